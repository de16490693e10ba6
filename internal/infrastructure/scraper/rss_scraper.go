package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/scraper"
)

// RSSScraper reads company press feeds (RSS/Atom) as an alternate strategy
// for newsrooms that publish one.
type RSSScraper struct {
	parser *gofeed.Parser
	delay  time.Duration
}

var _ scraper.Scraper = (*RSSScraper)(nil)

// NewRSSScraper configures a gofeed parser sharing the scrapers' HTTP settings.
func NewRSSScraper(client *http.Client, userAgent string, delay time.Duration) *RSSScraper {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	if client != nil {
		parser.Client = client
	}
	return &RSSScraper{parser: parser, delay: delay}
}

// Name identifies the strategy inside the registry.
func (r *RSSScraper) Name() string {
	return "rss"
}

// Scrape parses each configured feed URL into announcements.
func (r *RSSScraper) Scrape(ctx context.Context, req scraper.Request) ([]domain.Announcement, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no feeds configured for company %s", req.Company)
	}

	results := make([]domain.Announcement, 0)
	seen := map[string]struct{}{}

	for _, page := range req.Pages {
		if err := politeWait(ctx, r.delay); err != nil {
			return nil, err
		}

		feed, err := r.parser.ParseURLWithContext(page.URL, ctx)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", page.Name, err)
		}

		for _, item := range feed.Items {
			if item == nil || strings.TrimSpace(item.Title) == "" {
				continue
			}

			key := item.Link + "|" + item.Title
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			results = append(results, feedItemToAnnouncement(req.Company, page.URL, item))
		}
	}

	return results, nil
}

func feedItemToAnnouncement(company, feedURL string, item *gofeed.Item) domain.Announcement {
	link := item.Link
	if link == "" {
		link = feedURL
	}

	text := item.Content
	if text == "" {
		text = item.Description
	}
	text = collapseWhitespace(text)
	if len(text) > maxSnippetLen {
		text = text[:maxSnippetLen]
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	return domain.Announcement{
		Company:     company,
		Title:       strings.TrimSpace(item.Title),
		URL:         link,
		RawText:     text,
		Source:      "rss",
		PublishedAt: publishedAt,
	}
}
