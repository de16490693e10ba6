package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/infrastructure/llm"
	"github.com/jserafin20190423/competitor-news/internal/infrastructure/notify"
	infrascraper "github.com/jserafin20190423/competitor-news/internal/infrastructure/scraper"
	"github.com/jserafin20190423/competitor-news/internal/ports"
	"github.com/jserafin20190423/competitor-news/internal/report"
	"github.com/jserafin20190423/competitor-news/internal/runstate"
	"github.com/jserafin20190423/competitor-news/internal/scraper"
	"github.com/jserafin20190423/competitor-news/internal/usecase"
)

// Application wires configuration to the run coordinator and its adapters.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	runner   *usecase.Runner
	states   ports.RunStore
	writer   *report.Writer
	notifier ports.Notifier
}

// New builds a runnable application instance. Construction failures (invalid
// config, unreachable credentials, unwritable reports directory) are fatal.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout()}

	registry := scraper.NewRegistry()
	registry.Register(infrascraper.NewNewsroomScraper(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RequestDelay(), logger.With("component", "scraper.newsroom")))
	registry.Register(infrascraper.NewRSSScraper(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RequestDelay()))

	source := infrascraper.NewCompanySource(registry, cfg.Companies, logger.With("component", "source"))

	analyzer, err := newAnalyzer(ctx, cfg.Analyzer, logger)
	if err != nil {
		return nil, err
	}

	writer, err := report.NewWriter(cfg.Report.Dir)
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Email.Enabled() {
		notifier = notify.NewEmailNotifier(cfg.Email)
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Source:         source,
		Analyzer:       analyzer,
		Threshold:      cfg.Analyzer.Threshold,
		IncludeUndated: cfg.Filter.IncludeUndatedItems(),
		Logger:         logger.With("component", "runner"),
	})

	return &Application{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		states:   runstate.NewStore(cfg.State.Path, cfg.Filter.DefaultLookbackDays, cfg.Filter.MaxLookbackDays, logger.With("component", "runstate")),
		writer:   writer,
		notifier: notifier,
	}, nil
}

func newAnalyzer(ctx context.Context, cfg config.AnalyzerConfig, logger *slog.Logger) (ports.Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return llm.NewGeminiAnalyzer(ctx, cfg, logger.With("component", "analyzer.gemini"))
	default:
		return llm.NewOpenAIAnalyzer(cfg, logger.With("component", "analyzer.openai")), nil
	}
}

// Run performs one complete pipeline execution. The watermark advances only
// after the report file is on disk; email delivery failures are logged but do
// not fail the run.
func (a *Application) Run(ctx context.Context) error {
	state, err := a.states.Load()
	if err != nil {
		return fmt.Errorf("load run state: %w", err)
	}

	a.logger.Info("starting run", "since", state.LastRun, "companies", len(a.cfg.Companies))

	result, newState, err := a.runner.Run(ctx, state)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	markdown := report.Render(result)

	path, err := a.writer.Write(markdown, result.GeneratedAt)
	if err != nil {
		return err
	}
	a.logger.Info("report written", "path", path, "announcements", result.TotalAnnouncements())

	if a.notifier != nil {
		subject := fmt.Sprintf("Competitor News Report %s", result.GeneratedAt.Format("2006-01-02"))
		if err := a.notifier.SendReport(ctx, subject, markdown); err != nil {
			a.logger.Warn("report email failed", "error", err)
		}
	}

	if err := a.states.Save(newState); err != nil {
		return fmt.Errorf("save run state: %w", err)
	}

	a.logger.Info("run completed", "watermark", newState.LastRun)
	return nil
}
