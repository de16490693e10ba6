package domain

import "time"

// Announcement is one scraped news or press-release item from a competitor site.
// PublishedAt is the zero time when the page carried no parseable date.
type Announcement struct {
	Company     string
	Title       string
	URL         string
	RawText     string
	Source      string
	PublishedAt time.Time
}

// Analysis captures the LLM verdict for a single announcement.
type Analysis struct {
	Importance   float64
	Category     string
	Summary      string
	Implications string
}

// AnalyzedAnnouncement is an announcement that survived analysis.
// Items without a successful analysis are dropped, never kept half-filled.
type AnalyzedAnnouncement struct {
	Announcement
	Analysis
}
