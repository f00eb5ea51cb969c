// Package htmlquery adapts goquery to the lookups monitors need: find the
// first element by tag and text, walk following siblings, and read an
// element's own text.
package htmlquery

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextMatcher tests an element's direct text.
type TextMatcher func(text string) bool

// Parse builds a queryable document from a raw HTML body.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// DirectText concatenates the text nodes that are immediate children of the
// first element in sel, ignoring text inside nested elements.
func DirectText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for child := sel.Get(0).FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// Matching returns every element under root selected by selector whose
// direct text satisfies match, in document order.
func Matching(root *goquery.Selection, selector string, match TextMatcher) *goquery.Selection {
	return root.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return match(DirectText(s))
	})
}

// First returns the first element under root selected by selector whose
// direct text satisfies match. The selection is empty when nothing matches.
func First(root *goquery.Selection, selector string, match TextMatcher) *goquery.Selection {
	return Matching(root, selector, match).First()
}

// FirstContaining returns the first element selected by tag whose full text,
// including descendants, contains text. Matching is case-sensitive.
func FirstContaining(root *goquery.Selection, tag string, text string) *goquery.Selection {
	return root.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), text)
	}).First()
}

// NextSibling returns the first sibling after sel matching selector.
func NextSibling(sel *goquery.Selection, selector string) *goquery.Selection {
	return sel.NextAllFiltered(selector).First()
}

// Equals matches text equal to want after trimming surrounding whitespace.
func Equals(want string) TextMatcher {
	return func(text string) bool {
		return strings.TrimSpace(text) == want
	}
}

// Regexp matches text containing a match of re.
func Regexp(re *regexp.Regexp) TextMatcher {
	return func(text string) bool {
		return re.MatchString(text)
	}
}
