package scraper

import (
	"context"
	"log/slog"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/ports"
	"github.com/jserafin20190423/competitor-news/internal/scraper"
)

// CompanySource implements AnnouncementSource via registered scraper strategies.
type CompanySource struct {
	registry  *scraper.Registry
	companies []config.CompanyConfig
	logger    *slog.Logger
}

var _ ports.AnnouncementSource = (*CompanySource)(nil)

// NewCompanySource wires the scraper registry with config-defined companies.
func NewCompanySource(reg *scraper.Registry, companies []config.CompanyConfig, log *slog.Logger) *CompanySource {
	return &CompanySource{
		registry:  reg,
		companies: companies,
		logger:    log,
	}
}

// FetchCompanies executes each company's scraper in configured order. A
// company whose strategy is missing or whose pages fail is marked with Err
// and the remaining companies are still fetched.
func (s *CompanySource) FetchCompanies(ctx context.Context) []ports.CompanyResult {
	results := make([]ports.CompanyResult, 0, len(s.companies))

	for _, company := range s.companies {
		result := ports.CompanyResult{Company: company.Name}

		strategy, err := s.registry.Resolve(company.Scraper)
		if err != nil {
			s.warn("company skipped", "company", company.Name, "error", err)
			result.Err = err
			results = append(results, result)
			continue
		}

		req := scraper.Request{
			Company:   company.Name,
			Pages:     toScraperPages(company.Pages),
			Selectors: toSelectorRules(company.Selectors),
		}

		anns, err := strategy.Scrape(ctx, req)
		if err != nil {
			s.warn("scrape failed", "company", company.Name, "scraper", company.Scraper, "error", err)
			result.Err = err
			results = append(results, result)
			continue
		}

		s.debug("company scraped", "company", company.Name, "count", len(anns))
		result.Announcements = anns
		results = append(results, result)
	}

	return results
}

func toScraperPages(cfg []config.PageConfig) []scraper.Page {
	pages := make([]scraper.Page, 0, len(cfg))
	for _, p := range cfg {
		pages = append(pages, scraper.Page{Name: p.Name, URL: p.URL})
	}
	return pages
}

func toSelectorRules(cfg config.SelectorConfig) scraper.SelectorRules {
	return scraper.SelectorRules{
		Item:        cfg.Item,
		Title:       cfg.Title,
		Link:        cfg.Link,
		Date:        cfg.Date,
		DateAttr:    cfg.DateAttr,
		Snippet:     cfg.Snippet,
		DateFormats: cfg.DateFormats,
	}
}

func (s *CompanySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *CompanySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
