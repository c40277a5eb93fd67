package extract

import (
	"regexp"
	"strings"
	"time"
)

// monthPattern recognizes absolute dates like "12 января". The match is
// only used as a recognition signal: without a reference year the exact
// day cannot be resolved, so the result still falls back to the
// extraction time. Deliberately lossy, not a date parser.
var monthPattern = regexp.MustCompile(`(\d{1,2})\s+(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)`)

// parsePublishedAt maps free-form date text to a timestamp. Relative
// phrases resolve against now; everything else is now.
func parsePublishedAt(text string, now time.Time) time.Time {
	switch {
	case strings.Contains(text, "сегодня"):
		return now
	case strings.Contains(text, "вчера"):
		return now.AddDate(0, 0, -1)
	case monthPattern.MatchString(text):
		return now
	default:
		return now
	}
}
