// Package standardfare watches the Standard Fare lunch page for a sandwich
// whose name contains one of the configured keywords.
package standardfare

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/menu-monitor/internal/htmlquery"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

// Name tags this monitor's alert and error lines.
const Name = "StandardFareMonitor"

// DefaultURL is the lunch menu page.
const DefaultURL = "https://www.standardfareberkeley.com/lunch"

// dateLayout renders "October 07".
const dateLayout = "January 02"

const serviceDays = "Served Tuesday - Friday"

var sandwichPattern = regexp.MustCompile(`(?i)sandwich`)

// Menu is the parsed lunch page.
type Menu struct {
	// Date is the menu's date label, e.g. "October 17".
	Date string
	// Sandwich is the matched item name without its trailing word; empty when
	// nothing matched.
	Sandwich    string
	Description string
}

// Matched reports whether a keyword sandwich was found.
func (m Menu) Matched() bool {
	return m.Sandwich != ""
}

// Monitor implements monitor.Monitor[Menu].
type Monitor struct {
	url      string
	keywords monitor.AnyKeyword
}

var _ monitor.Monitor[Menu] = (*Monitor)(nil)

// Option customizes a Monitor.
type Option func(*Monitor)

// WithURL overrides the page URL.
func WithURL(url string) Option {
	return func(m *Monitor) {
		m.url = url
	}
}

// New returns a Monitor matching any of keywords, case-insensitively.
func New(keywords []string, opts ...Option) *Monitor {
	m := &Monitor{
		url:      DefaultURL,
		keywords: monitor.NewAnyKeyword(keywords),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements monitor.Monitor.
func (m *Monitor) Name() string {
	return Name
}

// URL implements monitor.Monitor.
func (m *Monitor) URL() (string, bool) {
	return m.url, m.url != ""
}

// Keywords returns the normalized keyword list.
func (m *Monitor) Keywords() []string {
	return append([]string(nil), m.keywords...)
}

// Parse locates the menu date below the fixed service-days heading, then scans
// the sandwich titles for the first keyword match that has a description.
func (m *Monitor) Parse(doc *goquery.Document) (Menu, bool) {
	service := htmlquery.First(doc.Selection, "h2", htmlquery.Equals(serviceDays))
	if service.Length() == 0 {
		return Menu{}, false
	}
	date := htmlquery.NextSibling(service, "h1")
	if date.Length() == 0 {
		return Menu{}, false
	}

	menu := Menu{Date: strings.TrimSpace(htmlquery.DirectText(date))}

	items := htmlquery.Matching(doc.Selection, "div.menu-item-title", htmlquery.Regexp(sandwichPattern))
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		desc := htmlquery.NextSibling(item, "div.menu-item-description")
		if desc.Length() == 0 {
			return true
		}
		title := strings.ToLower(htmlquery.DirectText(item))
		if !m.keywords.Match(title) {
			return true
		}
		menu.Sandwich = trimLastWord(title)
		menu.Description = htmlquery.DirectText(desc)
		return false
	})
	return menu, true
}

// AlertIf implements monitor.Monitor: the menu is today's and a sandwich matched.
func (m *Monitor) AlertIf(menu Menu, now time.Time) bool {
	return menu.Date == now.Format(dateLayout) && menu.Matched()
}

// AlertMessage implements monitor.Monitor.
func (m *Monitor) AlertMessage(menu Menu) []string {
	return []string{fmt.Sprintf("%s (%s) - %s", menu.Sandwich, menu.Date, menu.Description)}
}

// trimLastWord drops the final space-separated word ("sandwich").
func trimLastWord(title string) string {
	words := strings.Split(title, " ")
	return strings.TrimSpace(strings.Join(words[:len(words)-1], " "))
}
