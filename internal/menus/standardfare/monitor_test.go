package standardfare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/menu-monitor/internal/htmlquery"
)

const lunchPage = `<html><body>
<div class="header">
  <h2>Served Tuesday - Friday</h2>
  <p>11am - 2pm</p>
  <h1>October 17</h1>
</div>
<div class="menu-item">
  <div class="menu-item-title">Turkey Sandwich</div>
  <div class="menu-item-description">turkey, aioli</div>
</div>
<div class="menu-item">
  <div class="menu-item-title">Pork Belly Sandwich</div>
</div>
<div class="menu-item">
  <div class="menu-item-title">Roast Beef Sandwich</div>
  <div class="menu-item-price">14</div>
  <div class="menu-item-description">roast beef, horseradish</div>
</div>
<div class="menu-item">
  <div class="menu-item-title">Sausage Sandwich</div>
  <div class="menu-item-description">sausage, peppers</div>
</div>
<div class="menu-item">
  <div class="menu-item-title">Beet Salad</div>
  <div class="menu-item-description">beets</div>
</div>
</body></html>`

var keywords = []string{"pork", "beet", "beets", "roast beef", "roastbeef", "sausage"}

func TestParse_FirstKeywordSandwichWithDescription(t *testing.T) {
	t.Parallel()

	doc, err := htmlquery.Parse([]byte(lunchPage))
	require.NoError(t, err)

	menu, ok := New(keywords).Parse(doc)
	require.True(t, ok)
	require.Equal(t, Menu{
		Date:        "October 17",
		Sandwich:    "roast beef",
		Description: "roast beef, horseradish",
	}, menu)
}

func TestParse_NoMatchStillReturnsDate(t *testing.T) {
	t.Parallel()

	doc, err := htmlquery.Parse([]byte(lunchPage))
	require.NoError(t, err)

	menu, ok := New([]string{"tofu"}).Parse(doc)
	require.True(t, ok)
	require.Equal(t, "October 17", menu.Date)
	require.False(t, menu.Matched())
}

func TestParse_MissingServiceHeading(t *testing.T) {
	t.Parallel()

	doc, err := htmlquery.Parse([]byte(`<html><body><h2>Closed for the holidays</h2><h1>October 17</h1></body></html>`))
	require.NoError(t, err)

	_, ok := New(keywords).Parse(doc)
	require.False(t, ok)
}

func TestParse_MissingDateHeading(t *testing.T) {
	t.Parallel()

	doc, err := htmlquery.Parse([]byte(`<html><body><div><h2>Served Tuesday - Friday</h2><p>soon</p></div></body></html>`))
	require.NoError(t, err)

	_, ok := New(keywords).Parse(doc)
	require.False(t, ok)
}

func TestAlertIf_RequiresTodayAndMatch(t *testing.T) {
	t.Parallel()

	m := New(keywords)
	today := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	matched := Menu{Date: "October 17", Sandwich: "pork", Description: "pork, slaw"}

	require.True(t, m.AlertIf(matched, today))
	require.False(t, m.AlertIf(matched, today.AddDate(0, 0, 1)))
	require.False(t, m.AlertIf(Menu{Date: "October 17"}, today))
}

func TestAlertIf_ZeroPaddedDay(t *testing.T) {
	t.Parallel()

	m := New(keywords)
	day := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	require.True(t, m.AlertIf(Menu{Date: "March 05", Sandwich: "beet"}, day))
	require.False(t, m.AlertIf(Menu{Date: "March 5", Sandwich: "beet"}, day))
}

func TestAlertMessage(t *testing.T) {
	t.Parallel()

	got := New(keywords).AlertMessage(Menu{Date: "October 17", Sandwich: "roast beef", Description: "roast beef, horseradish"})
	require.Equal(t, []string{"roast beef (October 17) - roast beef, horseradish"}, got)
}

func TestURL(t *testing.T) {
	t.Parallel()

	url, ok := New(nil).URL()
	require.True(t, ok)
	require.Equal(t, DefaultURL, url)

	_, ok = New(nil, WithURL("")).URL()
	require.False(t, ok)
}
