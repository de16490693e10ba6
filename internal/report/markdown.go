// Package report renders run results to markdown and persists one dated
// report file per run.
package report

import (
	"fmt"
	"strings"

	"github.com/jserafin20190423/competitor-news/internal/domain"
)

// Render produces the markdown document for a run. It is deterministic: the
// same report value always yields byte-identical output, so the caller sorts
// sections and announcements before rendering.
func Render(r domain.Report) string {
	var b strings.Builder

	b.WriteString("# Competitor News Report\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	writeExecutiveSummary(&b, r)

	for _, section := range r.Sections {
		if section.Unavailable || len(section.Announcements) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", section.Company)

		for _, ann := range section.Announcements {
			writeAnnouncement(&b, ann)
		}
	}

	return b.String()
}

func writeExecutiveSummary(b *strings.Builder, r domain.Report) {
	b.WriteString("## Executive Summary\n\n")

	total := r.TotalAnnouncements()
	if total == 0 {
		b.WriteString("No new announcements since the last report.\n\n")
	} else {
		fmt.Fprintf(b, "Found %d significant announcement%s.\n\n", total, plural(total))
	}

	for _, section := range r.Sections {
		switch {
		case section.Unavailable:
			reason := section.FailureReason
			if reason == "" {
				reason = "fetch failed"
			}
			fmt.Fprintf(b, "- %s: could not retrieve (%s)\n", section.Company, reason)
		case len(section.Announcements) == 0:
			fmt.Fprintf(b, "- %s: no new announcements\n", section.Company)
		default:
			fmt.Fprintf(b, "- %s: %d announcement%s\n", section.Company, len(section.Announcements), plural(len(section.Announcements)))
		}
	}
	b.WriteString("\n")
}

func writeAnnouncement(b *strings.Builder, ann domain.AnalyzedAnnouncement) {
	fmt.Fprintf(b, "### %s\n\n", ann.Title)

	date := "unknown"
	if !ann.PublishedAt.IsZero() {
		date = ann.PublishedAt.Format("2006-01-02")
	}

	fmt.Fprintf(b, "**Date:** %s\n", date)
	fmt.Fprintf(b, "**Category:** %s\n", ann.Category)
	fmt.Fprintf(b, "**Importance:** %.2f/1.0\n", ann.Importance)
	fmt.Fprintf(b, "**Source:** %s\n\n", ann.Source)
	fmt.Fprintf(b, "**Summary:** %s\n\n", ann.Summary)
	fmt.Fprintf(b, "**Business Implications:** %s\n\n", ann.Implications)
	fmt.Fprintf(b, "**Link:** %s\n\n", ann.URL)
	b.WriteString("---\n\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
