package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/infrastructure/llm"
	"github.com/jserafin20190423/competitor-news/internal/ports"
)

// RunnerDeps wires the driven adapters into the run coordinator.
type RunnerDeps struct {
	Source         ports.AnnouncementSource
	Analyzer       ports.Analyzer
	Threshold      float64
	IncludeUndated bool
	Logger         *slog.Logger
	Now            func() time.Time
}

// Runner executes the fetch -> parse -> date-filter -> analyze -> threshold
// -> group -> report sequence for one run.
type Runner struct {
	source         ports.AnnouncementSource
	analyzer       ports.Analyzer
	threshold      float64
	includeUndated bool
	logger         *slog.Logger
	now            func() time.Time
}

// NewRunner constructs the coordinator.
func NewRunner(deps RunnerDeps) *Runner {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		source:         deps.Source,
		analyzer:       deps.Analyzer,
		threshold:      deps.Threshold,
		includeUndated: deps.IncludeUndated,
		logger:         deps.Logger,
		now:            now,
	}
}

// Run produces the report and the state a successful run should persist. The
// state is injected in and handed back, never read from ambient scope; the
// caller persists it only after the report has been written. Per-company and
// per-item failures are contained here and surface only inside the report and
// the logs.
func (r *Runner) Run(ctx context.Context, state domain.RunState) (domain.Report, domain.RunState, error) {
	results := r.source.FetchCompanies(ctx)

	sections := make([]domain.Section, 0, len(results))
	freshTotal := 0
	for _, res := range results {
		if ctx.Err() != nil {
			return domain.Report{}, state, ctx.Err()
		}

		if res.Err != nil {
			sections = append(sections, domain.Section{
				Company:       res.Company,
				Unavailable:   true,
				FailureReason: res.Err.Error(),
			})
			continue
		}

		fresh := filterSince(res.Announcements, state.LastRun, r.includeUndated)
		freshTotal += len(fresh)
		r.info("company filtered", "company", res.Company, "scraped", len(res.Announcements), "new", len(fresh))

		analyzed := r.analyzeAll(ctx, fresh)
		sortForReport(analyzed)

		sections = append(sections, domain.Section{
			Company:       res.Company,
			Announcements: analyzed,
		})
	}

	if err := ctx.Err(); err != nil {
		return domain.Report{}, state, err
	}

	generatedAt := r.now()
	report := domain.Report{GeneratedAt: generatedAt, Sections: sections}

	// A run that saw nothing new keeps its watermark, so re-running is an
	// idempotent no-op. Items that were analyzed (even if all dropped)
	// advance it: they should not be scored again next run.
	newState := state
	if freshTotal > 0 {
		newState = domain.RunState{LastRun: generatedAt}
	}

	return report, newState, nil
}

// filterSince keeps announcements published strictly after the watermark.
// Items with an unknown publish date cannot be proven old; they are kept when
// includeUndated is set (the default).
func filterSince(anns []domain.Announcement, since time.Time, includeUndated bool) []domain.Announcement {
	kept := make([]domain.Announcement, 0, len(anns))
	for _, ann := range anns {
		if ann.PublishedAt.IsZero() {
			if includeUndated {
				kept = append(kept, ann)
			}
			continue
		}
		if ann.PublishedAt.After(since) {
			kept = append(kept, ann)
		}
	}
	return kept
}

func (r *Runner) analyzeAll(ctx context.Context, anns []domain.Announcement) []domain.AnalyzedAnnouncement {
	analyzed := make([]domain.AnalyzedAnnouncement, 0, len(anns))

	for _, ann := range anns {
		if ctx.Err() != nil {
			return analyzed
		}

		analysis, err := r.analyzer.Analyze(ctx, ann)
		if err != nil {
			if errors.Is(err, llm.ErrExcluded) {
				r.info("announcement excluded by model", "company", ann.Company, "title", ann.Title)
			} else {
				r.warn("analysis failed, dropping item", "company", ann.Company, "title", ann.Title, "error", err)
			}
			continue
		}

		if analysis.Importance < r.threshold {
			r.info("announcement below threshold", "company", ann.Company, "title", ann.Title, "importance", analysis.Importance)
			continue
		}

		analyzed = append(analyzed, domain.AnalyzedAnnouncement{
			Announcement: ann,
			Analysis:     analysis,
		})
	}

	return analyzed
}

// sortForReport orders announcements by descending importance, then
// descending publish date, then original discovery order. The input slice is
// already in discovery order, so a stable sort preserves it as the final tiebreak.
func sortForReport(anns []domain.AnalyzedAnnouncement) {
	sort.SliceStable(anns, func(i, j int) bool {
		if anns[i].Importance != anns[j].Importance {
			return anns[i].Importance > anns[j].Importance
		}
		return anns[i].PublishedAt.After(anns[j].PublishedAt)
	})
}

func (r *Runner) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Runner) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
