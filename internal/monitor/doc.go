// Package monitor defines the four-stage monitor contract (locate, fetch,
// extract, decide/format) and the pipeline that executes one monitor against
// the fetch, alert, and error collaborators. Concrete monitors live under
// internal/menus; the scheduler package fans many of them out concurrently.
package monitor
