package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/ports"
)

// GeminiAnalyzer scores announcements via the Gemini API, constraining the
// response with a JSON schema instead of prompt-only formatting.
type GeminiAnalyzer struct {
	client      *genai.Client
	model       string
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

var _ ports.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer builds an analyzer from configuration.
func NewGeminiAnalyzer(ctx context.Context, cfg config.AnalyzerConfig, logger *slog.Logger) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiAnalyzer{
		client:      client,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff(),
		logger:      logger,
	}, nil
}

// Analyze sends the instruction template and parses the schema-constrained
// JSON verdict.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, ann domain.Announcement) (domain.Analysis, error) {
	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: systemPrompt}}},
		{Role: "user", Parts: []*genai.Part{{Text: buildUserPrompt(ann)}}},
	}

	var content string
	err := withRetry(ctx, g.maxAttempts, g.backoff, func() error {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
		})
		if err != nil {
			g.debug("completion attempt failed", "company", ann.Company, "title", ann.Title, "error", err)
			return fmt.Errorf("gemini API error: %w", err)
		}
		content = resp.Text()
		return nil
	})
	if err != nil {
		return domain.Analysis{}, err
	}

	return parseAnalysis(content)
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"importance_score": {Type: genai.TypeNumber, Description: "Competitive importance in [0,1]."},
			"category":         {Type: genai.TypeString, Description: "One of the defined announcement categories."},
			"summary":          {Type: genai.TypeString, Description: "2-3 sentence summary."},
			"implications":     {Type: genai.TypeString, Description: "2-3 sentences on competitive implications."},
			"should_include":   {Type: genai.TypeBoolean, Description: "False for routine or non-business announcements."},
		},
		Required: []string{"importance_score", "category", "summary", "implications", "should_include"},
	}
}

func (g *GeminiAnalyzer) debug(msg string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
