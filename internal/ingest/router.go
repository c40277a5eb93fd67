package ingest

import "strings"

// sourcePatterns is evaluated in order; the patterns are not mutually
// exclusive, so the priority here is part of the contract.
var sourcePatterns = []struct {
	source   Source
	patterns []string
}{
	{SourceHH, []string{"hh.ru", "hh."}},
	{SourceSuperJob, []string{"superjob.ru", "superjob."}},
	{SourceHabr, []string{"habr.com", "career.habr"}},
}

// ResolveSource maps a URL to the source that should handle it by
// substring match on the raw URL. Matching is case-sensitive. Unknown is
// a valid outcome, not an error: it short-circuits extraction for that
// URL with a warning.
func ResolveSource(url string) Source {
	for _, entry := range sourcePatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(url, pattern) {
				return entry.source
			}
		}
	}
	return SourceUnknown
}
