package extract

import (
	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// hhProfile tracks hh.ru serp markup. The data-qa attributes are the
// stable contract; the class-based entries cover older renderings.
var hhProfile = profile{
	source: ingest.SourceHH,
	containers: selectorList{
		"div[data-qa='vacancy-serp__vacancy']",
		"div.vacancy-serp-item",
		"div[class*='vacancy']",
	},
	title: selectorList{
		"a[data-qa='vacancy-serp__vacancy-title']",
		"a[data-qa*='title']",
		"a.bloko-link",
		"h3 a, h2 a",
	},
	company: selectorList{
		"a[data-qa='vacancy-serp__vacancy-employer']",
		"a[data-qa*='employer']",
		"span[data-qa*='employer']",
	},
	salary: selectorList{
		"span[data-qa='vacancy-serp__vacancy-compensation']",
		"span[data-qa*='compensation']",
		"span[class*='salary']",
	},
	city: selectorList{
		"div[data-qa='vacancy-serp__vacancy-address']",
		"span[data-qa*='address']",
		"div[data-qa*='address']",
	},
	date: selectorList{
		"span[data-qa='vacancy-serp__vacancy-date']",
		"span[data-qa*='date']",
	},
	requirements: selectorList{
		"div[data-qa='vacancy-serp__vacancy_snippet_responsibility']",
		"div[data-qa*='responsibility']",
	},
}

// NewHH returns the hh.ru extractor.
func NewHH(clock ingest.Clock, logger *zap.Logger) *Extractor {
	return newExtractor(hhProfile, clock, logger)
}
