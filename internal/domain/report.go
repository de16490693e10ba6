package domain

import "time"

// Section groups the analyzed announcements of one company, in render order.
type Section struct {
	Company       string
	Announcements []AnalyzedAnnouncement
	Unavailable   bool
	FailureReason string
}

// Report is the write-once artifact of a run. Sections keep the configured
// company order regardless of fetch completion order.
type Report struct {
	GeneratedAt time.Time
	Sections    []Section
}

// TotalAnnouncements counts items across all sections.
func (r Report) TotalAnnouncements() int {
	total := 0
	for _, s := range r.Sections {
		total += len(s.Announcements)
	}
	return total
}
