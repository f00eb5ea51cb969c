// Package arizmendi watches the Arizmendi Emeryville weekly pizza forecast for
// pizzas matching configured ingredient groups.
package arizmendi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/menu-monitor/internal/htmlquery"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

// Name tags this monitor's alert and error lines.
const Name = "ArizmendiMonitor"

// DefaultURL is the weekly pizza page.
const DefaultURL = "https://www.arizmendi-bakery.org/arizmendi-emeryville-pizza"

// Weekdays is the fixed order days are searched and reported in.
var Weekdays = []string{"WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

var forecastPattern = regexp.MustCompile(`Pizza Forecast for`)

// Forecast is the parsed weekly page.
//
// The range is read as "<Month> DD-DD" and the one month applies to both
// days. A week spanning two months ("January 31 - February 4") is not
// understood and will fail to parse or gate on the wrong month.
type Forecast struct {
	Month    string
	StartDay int
	EndDay   int
	// Menu maps weekday to the matched pizza text; unmatched days are absent.
	Menu map[string]string
}

// HasMatch reports whether any weekday matched.
func (f Forecast) HasMatch() bool {
	for _, pizza := range f.Menu {
		if pizza != "" {
			return true
		}
	}
	return false
}

// Monitor implements monitor.Monitor[Forecast].
type Monitor struct {
	url     string
	filters monitor.FilterGroups
}

var _ monitor.Monitor[Forecast] = (*Monitor)(nil)

// Option customizes a Monitor.
type Option func(*Monitor)

// WithURL overrides the page URL.
func WithURL(url string) Option {
	return func(m *Monitor) {
		m.url = url
	}
}

// New returns a Monitor for the given ingredient groups. A pizza matches when
// it contains every ingredient of at least one group.
func New(groups [][]string, opts ...Option) *Monitor {
	m := &Monitor{
		url:     DefaultURL,
		filters: monitor.NewFilterGroups(groups),
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

// Filters returns the normalized ingredient groups.
func (m *Monitor) Filters() [][]string {
	out := make([][]string, len(m.filters))
	for i, group := range m.filters {
		out[i] = append([]string(nil), group...)
	}
	return out
}

// Parse reads the forecast range and, for each weekday, the first paragraph
// mentioning it.
func (m *Monitor) Parse(doc *goquery.Document) (Forecast, bool) {
	label := htmlquery.First(doc.Selection, "p", htmlquery.Regexp(forecastPattern))
	if label.Length() == 0 {
		return Forecast{}, false
	}
	month, start, end, ok := parseRange(htmlquery.DirectText(label))
	if !ok {
		return Forecast{}, false
	}

	forecast := Forecast{
		Month:    month,
		StartDay: start,
		EndDay:   end,
		Menu:     make(map[string]string, len(Weekdays)),
	}
	for _, day := range Weekdays {
		el := htmlquery.FirstContaining(doc.Selection, "p", day)
		if el.Length() == 0 {
			continue
		}
		pizza := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(el.Text(), day, "")))
		if m.filters.Match(pizza) {
			forecast.Menu[day] = pizza
		}
	}
	return forecast, true
}

// AlertIf implements monitor.Monitor: today falls inside the forecast week
// and some day matched.
func (m *Monitor) AlertIf(f Forecast, now time.Time) bool {
	day := now.Day()
	return f.Month == now.Format("January") &&
		day >= f.StartDay && day <= f.EndDay &&
		f.HasMatch()
}

// AlertMessage implements monitor.Monitor, one line per matched weekday.
func (m *Monitor) AlertMessage(f Forecast) []string {
	var messages []string
	for _, day := range Weekdays {
		if pizza := f.Menu[day]; pizza != "" {
			messages = append(messages, fmt.Sprintf("%s - %s", day, pizza))
		}
	}
	return messages
}

// parseRange reads the trailing "<Month> DD-DD" of label.
func parseRange(label string) (string, int, int, bool) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return "", 0, 0, false
	}
	month, days := fields[len(fields)-2], fields[len(fields)-1]
	startText, endText, found := strings.Cut(days, "-")
	if !found {
		return "", 0, 0, false
	}
	start, err := strconv.Atoi(startText)
	if err != nil {
		return "", 0, 0, false
	}
	end, err := strconv.Atoi(endText)
	if err != nil {
		return "", 0, 0, false
	}
	return month, start, end, true
}
