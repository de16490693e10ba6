package ports

import (
	"context"

	"github.com/jserafin20190423/competitor-news/internal/domain"
)

// CompanyResult carries one company's scrape outcome. Err is set when the
// company's pages could not be retrieved; the run continues without it.
type CompanyResult struct {
	Company       string
	Announcements []domain.Announcement
	Err           error
}

// AnnouncementSource pulls raw announcements for every configured company.
// Per-company failures are reported inside the results, never as a top-level
// error.
type AnnouncementSource interface {
	FetchCompanies(ctx context.Context) []CompanyResult
}

// Analyzer scores a single announcement via an external completion API.
// Implementations retry transient failures internally; a returned error means
// the item is dropped.
type Analyzer interface {
	Analyze(ctx context.Context, ann domain.Announcement) (domain.Analysis, error)
}

// Notifier delivers the rendered report to an outbound channel.
type Notifier interface {
	SendReport(ctx context.Context, subject, markdown string) error
}

// RunStore persists the watermark between runs.
type RunStore interface {
	Load() (domain.RunState, error)
	Save(state domain.RunState) error
}
