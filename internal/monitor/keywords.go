package monitor

import "strings"

// AnyKeyword matches text containing at least one of its lowercase substrings.
type AnyKeyword []string

// NewAnyKeyword lowercases words and drops blanks.
func NewAnyKeyword(words []string) AnyKeyword {
	out := make(AnyKeyword, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Match reports whether any keyword occurs in the lowercased text.
func (k AnyKeyword) Match(text string) bool {
	text = strings.ToLower(text)
	for _, w := range k {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// FilterGroups is an OR of groups, each an AND of lowercase substrings.
type FilterGroups [][]string

// NewFilterGroups lowercases every substring. Blank substrings and groups left
// empty are dropped so an empty group never matches everything.
func NewFilterGroups(groups [][]string) FilterGroups {
	out := make(FilterGroups, 0, len(groups))
	for _, group := range groups {
		words := []string(NewAnyKeyword(group))
		if len(words) == 0 {
			continue
		}
		out = append(out, words)
	}
	return out
}

// Match reports whether every substring of at least one group occurs in the
// lowercased text.
func (f FilterGroups) Match(text string) bool {
	text = strings.ToLower(text)
	for _, group := range f {
		if containsAll(text, group) {
			return true
		}
	}
	return false
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
