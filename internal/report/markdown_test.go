package report

import (
	"strings"
	"testing"
	"time"

	"github.com/jserafin20190423/competitor-news/internal/domain"
)

var reportTime = time.Date(2024, time.February, 2, 6, 0, 0, 0, time.UTC)

func sampleReport() domain.Report {
	return domain.Report{
		GeneratedAt: reportTime,
		Sections: []domain.Section{
			{
				Company: "Uponor",
				Announcements: []domain.AnalyzedAnnouncement{
					{
						Announcement: domain.Announcement{
							Company:     "Uponor",
							Title:       "New PEX-a Fitting System",
							URL:         "https://example.com/news/fitting",
							Source:      "newsroom",
							PublishedAt: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
						},
						Analysis: domain.Analysis{
							Importance:   0.8,
							Category:     "Product Launch",
							Summary:      "A new fitting generation.",
							Implications: "Strengthens the premium segment.",
						},
					},
				},
			},
			{
				Company:       "Georg Fischer",
				Unavailable:   true,
				FailureReason: "connection refused",
			},
			{Company: "Viega"},
		},
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	first := Render(sampleReport())
	second := Render(sampleReport())

	if first != second {
		t.Fatal("identical input produced different markdown")
	}
}

func TestRenderContent(t *testing.T) {
	t.Parallel()

	md := Render(sampleReport())

	for _, want := range []string{
		"# Competitor News Report",
		"Generated on: 2024-02-02 06:00 UTC",
		"Found 1 significant announcement.",
		"- Uponor: 1 announcement",
		"- Georg Fischer: could not retrieve (connection refused)",
		"- Viega: no new announcements",
		"## Uponor",
		"### New PEX-a Fitting System",
		"**Date:** 2024-02-01",
		"**Category:** Product Launch",
		"**Importance:** 0.80/1.0",
		"**Business Implications:** Strengthens the premium segment.",
		"**Link:** https://example.com/news/fitting",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}

	if strings.Contains(md, "## Georg Fischer") {
		t.Fatal("unavailable company must not get a body section")
	}
	if strings.Contains(md, "## Viega") {
		t.Fatal("empty company must not get a body section")
	}
}

func TestRenderEmptyReport(t *testing.T) {
	t.Parallel()

	md := Render(domain.Report{
		GeneratedAt: reportTime,
		Sections: []domain.Section{
			{Company: "Uponor"},
			{Company: "Viega"},
		},
	})

	if !strings.Contains(md, "No new announcements since the last report.") {
		t.Fatalf("missing minimal-report line:\n%s", md)
	}
	if !strings.Contains(md, "- Uponor: no new announcements") {
		t.Fatalf("missing per-company note:\n%s", md)
	}
}

func TestRenderUndatedAnnouncement(t *testing.T) {
	t.Parallel()

	md := Render(domain.Report{
		GeneratedAt: reportTime,
		Sections: []domain.Section{
			{
				Company: "Viega",
				Announcements: []domain.AnalyzedAnnouncement{
					{
						Announcement: domain.Announcement{Company: "Viega", Title: "Undated", URL: "https://x", Source: "rss"},
						Analysis:     domain.Analysis{Importance: 0.5, Category: "Other", Summary: "s", Implications: "i"},
					},
				},
			},
		},
	})

	if !strings.Contains(md, "**Date:** unknown") {
		t.Fatalf("missing unknown-date rendering:\n%s", md)
	}
}

func TestWriterNeverOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}

	first, err := w.Write("first run\n", reportTime)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	second, err := w.Write("second run\n", reportTime)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	if first == second {
		t.Fatalf("second run overwrote %s", first)
	}
	if !strings.HasSuffix(first, "competitor_report_2024-02-02.md") {
		t.Fatalf("unexpected first path: %s", first)
	}
	if !strings.HasSuffix(second, "competitor_report_2024-02-02_02.md") {
		t.Fatalf("unexpected second path: %s", second)
	}
}
