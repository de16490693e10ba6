package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jserafin20190423/competitor-news/internal/scraper"
)

var testRules = scraper.SelectorRules{
	Item:     ".news-item",
	Title:    "h3",
	Link:     "a",
	Date:     "time",
	DateAttr: "datetime",
	Snippet:  "p",
}

func TestParseItem(t *testing.T) {
	t.Parallel()

	html := `
	<div class="news-item">
	  <h3>New PEX-a Fitting System</h3>
	  <a href="/news/pex-a-fitting">Read more</a>
	  <time datetime="2024-02-01T09:30:00Z">1 February 2024</time>
	  <p>Uponor introduces a new fitting generation.</p>
	</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	item := doc.Find(".news-item").First()
	req := scraper.Request{Company: "Uponor", Selectors: testRules}

	ann, err := parseItem(item, "https://example.com/en/news", req)
	if err != nil {
		t.Fatalf("parseItem error: %v", err)
	}

	if ann.Company != "Uponor" {
		t.Fatalf("unexpected company: %s", ann.Company)
	}
	if ann.Title != "New PEX-a Fitting System" {
		t.Fatalf("unexpected title: %s", ann.Title)
	}
	if ann.URL != "https://example.com/news/pex-a-fitting" {
		t.Fatalf("relative link not resolved: %s", ann.URL)
	}
	if ann.RawText != "Uponor introduces a new fitting generation." {
		t.Fatalf("unexpected snippet: %s", ann.RawText)
	}

	want := time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)
	if !ann.PublishedAt.Equal(want) {
		t.Fatalf("unexpected publish date: %v", ann.PublishedAt)
	}
}

func TestParseItemMissingDate(t *testing.T) {
	t.Parallel()

	html := `<div class="news-item"><h3>Undated Item</h3><a href="https://example.com/a">x</a></div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scraper.Request{Company: "Viega", Selectors: testRules}
	ann, err := parseItem(doc.Find(".news-item").First(), "https://example.com", req)
	if err != nil {
		t.Fatalf("parseItem error: %v", err)
	}

	if !ann.PublishedAt.IsZero() {
		t.Fatalf("expected zero time for missing date, got %v", ann.PublishedAt)
	}
}

func TestParseItemWithoutTitleSkipped(t *testing.T) {
	t.Parallel()

	html := `<div class="news-item"><a href="/x">no heading here</a></div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scraper.Request{Company: "Uponor", Selectors: testRules}
	if _, err := parseItem(doc.Find(".news-item").First(), "https://example.com", req); err == nil {
		t.Fatal("expected error for item without title")
	}
}

func TestParseItemDateTextFallback(t *testing.T) {
	t.Parallel()

	html := `<div class="news-item"><h3>Dated by text</h3><time>2 January 2024</time></div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	req := scraper.Request{Company: "Uponor", Selectors: testRules}
	ann, err := parseItem(doc.Find(".news-item").First(), "https://example.com", req)
	if err != nil {
		t.Fatalf("parseItem error: %v", err)
	}

	if ann.PublishedAt.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("unexpected publish date: %v", ann.PublishedAt)
	}
}

func TestNewsroomScraperScrape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent/1.0" {
			t.Errorf("unexpected user agent: %s", got)
		}
		// Deliberately sloppy markup: unclosed div, duplicate item.
		_, _ = w.Write([]byte(`
		<html><body>
		<div class="news-item">
		  <h3>First Item</h3>
		  <a href="/news/first">link</a>
		  <time datetime="2024-02-01T00:00:00Z">1 Feb</time>
		  <p>First snippet.</p>
		<div class="news-item">
		  <h3>First Item</h3>
		  <a href="/news/first">link</a>
		</div>
		<div class="news-item">
		  <h3>Second Item</h3>
		  <a href="/news/second">link</a>
		  <p>Second snippet.</p>
		</div>
		</body></html>`))
	}))
	defer server.Close()

	sc := NewNewsroomScraper(server.Client(), "test-agent/1.0", 0, nil)

	req := scraper.Request{
		Company:   "Uponor",
		Pages:     []scraper.Page{{Name: "newsroom", URL: server.URL + "/en/news"}},
		Selectors: testRules,
	}

	anns, err := sc.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	if len(anns) != 2 {
		t.Fatalf("expected 2 deduplicated announcements, got %d", len(anns))
	}
	if anns[0].Title != "First Item" || anns[1].Title != "Second Item" {
		t.Fatalf("unexpected titles: %q, %q", anns[0].Title, anns[1].Title)
	}
	if anns[0].URL != server.URL+"/news/first" {
		t.Fatalf("unexpected link: %s", anns[0].URL)
	}
	if anns[1].Source != "newsroom" {
		t.Fatalf("unexpected source: %s", anns[1].Source)
	}
}

func TestNewsroomScraperScrapeStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	sc := NewNewsroomScraper(server.Client(), "test-agent/1.0", 0, nil)

	req := scraper.Request{
		Company:   "Georg Fischer",
		Pages:     []scraper.Page{{Name: "media", URL: server.URL + "/media"}},
		Selectors: testRules,
	}

	if _, err := sc.Scrape(context.Background(), req); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestNewsroomScraperEmptyPageIsValid(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>nothing to see</p></body></html>`))
	}))
	defer server.Close()

	sc := NewNewsroomScraper(server.Client(), "test-agent/1.0", 0, nil)

	req := scraper.Request{
		Company:   "Uponor",
		Pages:     []scraper.Page{{Name: "newsroom", URL: server.URL}},
		Selectors: testRules,
	}

	anns, err := sc.Scrape(context.Background(), req)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(anns) != 0 {
		t.Fatalf("expected empty result, got %d", len(anns))
	}
}

func TestPoliteWaitHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := politeWait(ctx, time.Second); err == nil {
		t.Fatal("expected context error")
	}
}
