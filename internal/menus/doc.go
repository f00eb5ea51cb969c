// Package menus groups the concrete restaurant monitors. Each subpackage
// implements monitor.Monitor with its own parsed result type.
package menus
