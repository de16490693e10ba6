package scraper

import (
	"context"
	"fmt"

	"github.com/jserafin20190423/competitor-news/internal/domain"
)

// Page describes a concrete listing endpoint provided by config.
type Page struct {
	Name string
	URL  string
}

// SelectorRules is the declarative extraction schema for newsroom pages. Each
// field holds a CSS selector evaluated inside the item selection; empty
// optional fields are skipped, not errors.
type SelectorRules struct {
	Item        string
	Title       string
	Link        string
	Date        string
	DateAttr    string
	Snippet     string
	DateFormats []string
}

// Request carries all parameters required to scrape one company.
type Request struct {
	Company   string
	Pages     []Page
	Selectors SelectorRules
}

// Scraper captures a single strategy implementation (newsroom HTML, RSS, etc.).
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, req Request) ([]domain.Announcement, error)
}

// Registry keeps a mapping from scraper names to their implementations.
type Registry struct {
	scrapers map[string]Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

// Register adds or replaces a scraper implementation.
func (r *Registry) Register(s Scraper) {
	if r.scrapers == nil {
		r.scrapers = map[string]Scraper{}
	}
	r.scrapers[s.Name()] = s
}

// Resolve returns a scraper by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scraper, error) {
	if s, ok := r.scrapers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scraper %s is not registered", name)
}
