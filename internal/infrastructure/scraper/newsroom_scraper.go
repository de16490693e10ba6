package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/scraper"
)

const maxSnippetLen = 1000

var defaultDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
	"02/01/2006",
}

// NewsroomScraper extracts announcements from HTML listing pages using
// per-company selector rules.
type NewsroomScraper struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	logger    *slog.Logger
}

var _ scraper.Scraper = (*NewsroomScraper)(nil)

// NewNewsroomScraper wires an HTTP client; a nil client gets a 15s timeout.
func NewNewsroomScraper(client *http.Client, userAgent string, delay time.Duration, logger *slog.Logger) *NewsroomScraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &NewsroomScraper{client: client, userAgent: userAgent, delay: delay, logger: logger}
}

// Name identifies the strategy inside the registry.
func (n *NewsroomScraper) Name() string {
	return "newsroom"
}

// Scrape walks each configured page and returns every extractable item. A page
// that yields zero items is valid; a page that cannot be retrieved fails the
// whole company so the coordinator can flag it.
func (n *NewsroomScraper) Scrape(ctx context.Context, req scraper.Request) ([]domain.Announcement, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no pages configured for company %s", req.Company)
	}

	results := make([]domain.Announcement, 0)
	seen := map[string]struct{}{}

	for _, page := range req.Pages {
		if err := politeWait(ctx, n.delay); err != nil {
			return nil, err
		}

		doc, err := n.fetchDocument(ctx, page.URL)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page.Name, err)
		}

		items := n.extractItems(doc, page.URL, req)
		for _, ann := range items {
			key := ann.URL + "|" + ann.Title
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, ann)
		}
	}

	return results, nil
}

func (n *NewsroomScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (n *NewsroomScraper) extractItems(doc *goquery.Document, pageURL string, req scraper.Request) []domain.Announcement {
	var collected []domain.Announcement

	doc.Find(req.Selectors.Item).Each(func(i int, item *goquery.Selection) {
		ann, err := parseItem(item, pageURL, req)
		if err != nil {
			n.debug("skip item", "company", req.Company, "index", i, "reason", err)
			return
		}
		collected = append(collected, ann)
	})

	return collected
}

func parseItem(item *goquery.Selection, pageURL string, req scraper.Request) (domain.Announcement, error) {
	rules := req.Selectors

	title := strings.TrimSpace(item.Find(rules.Title).First().Text())
	if title == "" {
		return domain.Announcement{}, fmt.Errorf("no title under selector %q", rules.Title)
	}

	link := pageURL
	if rules.Link != "" {
		if href, exists := item.Find(rules.Link).First().Attr("href"); exists {
			link = resolveLink(pageURL, strings.TrimSpace(href))
		}
	}

	publishedAt := parseItemDate(item, rules)

	snippet := ""
	if rules.Snippet != "" {
		snippet = strings.TrimSpace(item.Find(rules.Snippet).First().Text())
	}
	if snippet == "" {
		snippet = strings.TrimSpace(item.Text())
	}
	snippet = collapseWhitespace(snippet)
	if len(snippet) > maxSnippetLen {
		snippet = snippet[:maxSnippetLen]
	}

	return domain.Announcement{
		Company:     req.Company,
		Title:       title,
		URL:         link,
		RawText:     snippet,
		Source:      "newsroom",
		PublishedAt: publishedAt,
	}, nil
}

// parseItemDate returns the zero time when no date can be extracted; the
// filter treats unknown dates per its own policy.
func parseItemDate(item *goquery.Selection, rules scraper.SelectorRules) time.Time {
	if rules.Date == "" {
		return time.Time{}
	}

	sel := item.Find(rules.Date).First()

	candidates := make([]string, 0, 2)
	if rules.DateAttr != "" {
		if attr, exists := sel.Attr(rules.DateAttr); exists {
			candidates = append(candidates, strings.TrimSpace(attr))
		}
	}
	candidates = append(candidates, strings.TrimSpace(sel.Text()))

	formats := rules.DateFormats
	if len(formats) == 0 {
		formats = defaultDateFormats
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		for _, layout := range formats {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed
			}
		}
	}

	return time.Time{}
}

func resolveLink(pageURL, href string) string {
	if href == "" {
		return pageURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return pageURL
	}

	return base.ResolveReference(ref).String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// politeWait sleeps the configured inter-request delay unless the context ends first.
func politeWait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *NewsroomScraper) debug(msg string, args ...interface{}) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
