package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/ports"
)

// OpenAIAnalyzer scores announcements via OpenAI chat completions.
type OpenAIAnalyzer struct {
	client      *openai.Client
	model       openai.ChatModel
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

var _ ports.Analyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer builds an analyzer from configuration.
func NewOpenAIAnalyzer(cfg config.AnalyzerConfig, logger *slog.Logger) *OpenAIAnalyzer {
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIAnalyzer{
		client:      &client,
		model:       openai.ChatModel(cfg.Model),
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff(),
		logger:      logger,
	}
}

// Analyze sends the fixed instruction template and parses the JSON verdict.
// The completion call is retried on transient failures; a response that
// cannot be parsed is not retried.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, ann domain.Announcement) (domain.Analysis, error) {
	userPrompt := buildUserPrompt(ann)

	var content string
	err := withRetry(ctx, a.maxAttempts, a.backoff, func() error {
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: a.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
		})
		if err != nil {
			a.debug("completion attempt failed", "company", ann.Company, "title", ann.Title, "error", err)
			return fmt.Errorf("openai API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no response from openai")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return domain.Analysis{}, err
	}

	return parseAnalysis(content)
}

func (a *OpenAIAnalyzer) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
