// Package extract implements per-source vacancy extraction from parsed
// listing pages. Sites rename CSS classes and data attributes over time,
// so every field is located through an ordered list of selector
// strategies evaluated first-non-empty-wins; adding or removing a
// fallback is a one-line list edit.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectorList is an ordered cascade of CSS selectors. Earlier entries are
// stricter; any non-empty match wins even over a stricter pattern further
// down the list.
type selectorList []string

// find returns the result set of the first selector that matches anything,
// or nil when none do.
func (l selectorList) find(root *goquery.Selection) *goquery.Selection {
	for _, sel := range l {
		if found := root.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// text returns the trimmed text of the first selector whose first match
// has non-empty text.
func (l selectorList) text(root *goquery.Selection) string {
	for _, sel := range l {
		if t := strings.TrimSpace(root.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// anchor returns the trimmed text and href of the first selector whose
// first match has non-empty text.
func (l selectorList) anchor(root *goquery.Selection) (text, href string) {
	for _, sel := range l {
		node := root.Find(sel).First()
		if t := strings.TrimSpace(node.Text()); t != "" {
			return t, node.AttrOr("href", "")
		}
	}
	return "", ""
}

// scanText returns the trimmed text of the first element matching selector
// whose text contains any marker, case-insensitively.
func scanText(root *goquery.Selection, selector string, markers []string) string {
	var out string
	root.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		lower := strings.ToLower(text)
		for _, marker := range markers {
			if strings.Contains(lower, strings.ToLower(marker)) {
				out = strings.TrimSpace(text)
				return false
			}
		}
		return true
	})
	return out
}

// absoluteURL resolves href against the site origin when it is relative.
func absoluteURL(href, origin string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return origin + href
}

// truncateCity keeps only the first comma/bullet-separated token of a raw
// address string.
func truncateCity(text string) string {
	if i := strings.IndexAny(text, ",•"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
