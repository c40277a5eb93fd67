package extract

import (
	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// habrProfile tracks career.habr.com job cards.
var habrProfile = profile{
	source: ingest.SourceHabr,
	containers: selectorList{
		"div.job-card",
		"div[class*='job']",
		"div.vacancy-card",
	},
	title: selectorList{
		"a.job-card__title",
		"a[class*='title']",
		"h3 a, h2 a, h4 a",
		"a[href*='/vacancies/']",
	},
	company: selectorList{
		"div.job-card__company-name",
		"div[class*='company']",
		"span[class*='company']",
	},
	salary: selectorList{
		"div.job-card__salary",
		"div[class*='salary']",
		"span[class*='salary']",
	},
	city: selectorList{
		"div.job-card__meta-item",
		"div[class*='meta']",
		"div[class*='meta'], span[class*='meta']",
	},
}

// NewHabr returns the career.habr.com extractor.
func NewHabr(clock ingest.Clock, logger *zap.Logger) *Extractor {
	return newExtractor(habrProfile, clock, logger)
}
