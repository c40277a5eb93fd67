package extract

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// Currency markers and well-known city names used by the loose scan
// fallbacks on sources whose markup carries no stable field classes.
var (
	currencyMarkers = []string{"руб", "₽", "USD", "EUR"}
	knownCities     = []string{
		"москва",
		"санкт-петербург",
		"новосибирск",
		"екатеринбург",
		"казань",
		"нижний новгород",
	}
)

// profile captures everything that differs between sources: the selector
// cascades per field and which loose fallbacks apply. The extraction
// algorithm itself is identical for every source.
type profile struct {
	source       ingest.Source
	containers   selectorList
	title        selectorList
	company      selectorList
	salary       selectorList
	city         selectorList
	date         selectorList // empty when the source exposes no dates
	requirements selectorList // empty when the source exposes no snippets
	salaryScan   bool         // currency-marker scan over all spans
	cityScan     bool         // known-city scan over spans and divs
}

// Extractor is a stateless per-source extractor driven by a profile.
type Extractor struct {
	profile profile
	clock   ingest.Clock
	logger  *zap.Logger
}

func newExtractor(p profile, clock ingest.Clock, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{profile: p, clock: clock, logger: logger.With(zap.String("source", string(p.source)))}
}

// Source identifies which site this extractor handles.
func (e *Extractor) Source() ingest.Source {
	return e.profile.source
}

// Extract returns zero or more vacancy candidates from a parsed listing
// page. A container yields no candidate when its title is empty; a
// panicking container is logged and skipped without aborting the page.
func (e *Extractor) Extract(doc *goquery.Document) []ingest.Vacancy {
	containers := e.profile.containers.find(doc.Selection)
	if containers == nil {
		e.logger.Warn("no vacancy containers matched")
		return nil
	}
	e.logger.Debug("containers found", zap.Int("count", containers.Length()))

	var vacancies []ingest.Vacancy
	containers.Each(func(i int, s *goquery.Selection) {
		v, ok := e.extractOne(i, s)
		if ok {
			vacancies = append(vacancies, v)
		}
	})
	e.logger.Info("page extracted",
		zap.Int("containers", containers.Length()),
		zap.Int("candidates", len(vacancies)),
	)
	return vacancies
}

func (e *Extractor) extractOne(index int, s *goquery.Selection) (v ingest.Vacancy, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("container extraction panicked",
				zap.Int("container", index),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	p := e.profile
	title, href := p.title.anchor(s)
	if title == "" {
		e.logger.Debug("skipped container without title", zap.Int("container", index))
		return ingest.Vacancy{}, false
	}

	v = ingest.Vacancy{
		Title:     title,
		SourceURL: absoluteURL(href, p.source.Origin()),
		Source:    p.source,
	}

	v.Company = p.company.text(s)
	if v.Company == "" {
		v.Company = ingest.UnspecifiedCompany
	}

	v.Salary = p.salary.text(s)
	if v.Salary == "" && p.salaryScan {
		v.Salary = scanText(s, "span", currencyMarkers)
	}

	city := p.city.text(s)
	if city == "" && p.cityScan {
		city = scanText(s, "span, div", knownCities)
	}
	if city = truncateCity(city); city == "" {
		city = ingest.UnspecifiedCity
	}
	v.City = city

	now := e.clock.Now()
	v.PublishedAt = now
	if len(p.date) > 0 {
		if dateText := p.date.text(s); dateText != "" {
			v.PublishedAt = parsePublishedAt(dateText, now)
		}
	}
	if len(p.requirements) > 0 {
		v.Requirements = p.requirements.text(s)
	}
	return v, true
}
