package extract

import (
	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// superJobProfile tracks superjob.ru markup. The site ships hashed class
// names (_1h3Zg and friends) that churn on every deploy, hence the long
// cascades and the marker-scan fallbacks for salary and city.
var superJobProfile = profile{
	source: ingest.SourceSuperJob,
	containers: selectorList{
		"div.f-test-vacancy-item",
		"div[class*='vacancy-item']",
		"div[class*='_1h3Zg']",
		"div[data-qa*='vacancy']",
		"article, div[class*='item']",
	},
	title: selectorList{
		"a[href*='/vakansii/']",
		"a[href*='/vacancy/']",
		"a._1IHWd",
		"a[class*='_1IHWd']",
		"h3 a, h2 a, h4 a",
		"a[class*='title']",
		"a",
	},
	company: selectorList{
		"span[class*='company']",
		"a[class*='company']",
		"span._3nMqD",
		"span[class*='_3nMqD']",
		"div[class*='company']",
	},
	salary: selectorList{
		"span[class*='salary']",
		"div[class*='salary']",
		"span._1OuF_",
		"span[class*='_1OuF_']",
	},
	city: selectorList{
		"span[class*='city']",
		"div[class*='city']",
		"span._3mfro",
		"span[class*='_3mfro']",
	},
	salaryScan: true,
	cityScan:   true,
}

// NewSuperJob returns the superjob.ru extractor.
func NewSuperJob(clock ingest.Clock, logger *zap.Logger) *Extractor {
	return newExtractor(superJobProfile, clock, logger)
}
