package scraper

import (
	"context"
	"fmt"
	"testing"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/scraper"
)

type fakeScraper struct {
	name string
	anns []domain.Announcement
	err  error
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(ctx context.Context, req scraper.Request) ([]domain.Announcement, error) {
	return f.anns, f.err
}

func TestCompanySourceIsolatesFailures(t *testing.T) {
	t.Parallel()

	registry := scraper.NewRegistry()
	registry.Register(&fakeScraper{
		name: "ok",
		anns: []domain.Announcement{{Company: "Uponor", Title: "One"}},
	})
	registry.Register(&fakeScraper{
		name: "broken",
		err:  fmt.Errorf("connection refused"),
	})

	companies := []config.CompanyConfig{
		{Name: "Uponor", Scraper: "ok", Pages: []config.PageConfig{{URL: "https://a"}}},
		{Name: "Georg Fischer", Scraper: "broken", Pages: []config.PageConfig{{URL: "https://b"}}},
		{Name: "Viega", Scraper: "unregistered", Pages: []config.PageConfig{{URL: "https://c"}}},
	}

	source := NewCompanySource(registry, companies, nil)
	results := source.FetchCompanies(context.Background())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Err != nil || len(results[0].Announcements) != 1 {
		t.Fatalf("expected Uponor success, got err=%v count=%d", results[0].Err, len(results[0].Announcements))
	}
	if results[1].Err == nil {
		t.Fatal("expected Georg Fischer failure to be recorded")
	}
	if results[2].Err == nil {
		t.Fatal("expected unregistered scraper to be recorded as failure")
	}

	// Configured order is preserved regardless of outcomes.
	for i, want := range []string{"Uponor", "Georg Fischer", "Viega"} {
		if results[i].Company != want {
			t.Fatalf("result %d: expected %s, got %s", i, want, results[i].Company)
		}
	}
}
