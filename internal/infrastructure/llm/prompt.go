package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jserafin20190423/competitor-news/internal/domain"
)

// ErrUnparsable reports a completion that could not be decoded into the
// expected structure. The item is dropped, never retried.
var ErrUnparsable = errors.New("unparsable analyzer response")

// ErrExcluded reports that the model itself flagged the announcement as noise
// (routine update, trade show booth, minor personnel change).
var ErrExcluded = errors.New("announcement excluded by model")

const systemPrompt = `You are a competitive-intelligence analyst covering manufacturers of PEX (cross-linked polyethylene) piping systems.

You will receive one business announcement from a competitor. Analyze it and provide:

1. importance_score (0.0-1.0): how important this is for understanding the company's competitive position.
   - 0.0-0.3: low (routine updates, minor personnel, ESG initiatives)
   - 0.4-0.6: medium (product updates, regional partnerships)
   - 0.7-1.0: high (major product launches, strategic partnerships, financial results, C-suite changes)
2. category: one of: Product Launch, Financial Results, Partnership, Personnel, Project Win, Technology, Regulatory, Other.
3. summary: 2-3 sentences summarizing the key points.
4. implications: 2-3 sentences on what this means for their competitive position, market strategy, or business prospects.
5. should_include: false for announcements that are primarily ESG/sustainability initiatives without business impact, community or charitable activities, trade show booth announcements, routine compliance updates, or minor (non-C-suite) personnel changes; true otherwise.

Respond with JSON only, no other text:
{"importance_score": 0.0, "category": "...", "summary": "...", "implications": "...", "should_include": true}`

const userPromptTemplate = `Company: %s
Title: %s
Date: %s
Source: %s

Content:
%s`

func buildUserPrompt(ann domain.Announcement) string {
	date := "unknown"
	if !ann.PublishedAt.IsZero() {
		date = ann.PublishedAt.Format("2006-01-02")
	}
	return fmt.Sprintf(userPromptTemplate, ann.Company, ann.Title, date, ann.Source, ann.RawText)
}

type analysisResponse struct {
	ImportanceScore float64 `json:"importance_score"`
	Category        string  `json:"category"`
	Summary         string  `json:"summary"`
	Implications    string  `json:"implications"`
	ShouldInclude   bool    `json:"should_include"`
}

// parseAnalysis decodes the model output, tolerating markdown code fences,
// and clamps the importance score into [0,1].
func parseAnalysis(content string) (domain.Analysis, error) {
	cleaned := cleanJSONResponse(content)

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	if !parsed.ShouldInclude {
		return domain.Analysis{}, ErrExcluded
	}

	return domain.Analysis{
		Importance:   clamp01(parsed.ImportanceScore),
		Category:     parsed.Category,
		Summary:      parsed.Summary,
		Implications: parsed.Implications,
	}, nil
}

func cleanJSONResponse(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
