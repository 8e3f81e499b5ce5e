package augur

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"assessment-recommender/internal/domain"
)

const scorerPromptTemplate = `Rate how relevant this assessment is for the hiring query.

Query: %s

Assessment: %s
Categories: %s
Description: %s

Score on a 1-5 scale where 5 means the assessment directly measures what
the query asks for and 1 means it is unrelated. Return only the score.`

var scorerFormat = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"score": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 5,
		},
	},
	"required": []string{"score"},
}

type scorerResult struct {
	Score int `json:"score"`
}

// ScorerClient implements domain.RelevanceScorer against the chat
// endpoint, one request per candidate.
type ScorerClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

func NewScorerClient(baseURL, model string, client *http.Client, logger *slog.Logger) *ScorerClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ScorerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		logger:  logger,
	}
}

// ScoreRelevance asks the model for a 1-5 relevance score of one
// assessment against the query.
func (c *ScorerClient) ScoreRelevance(ctx context.Context, query string, assessment domain.Assessment) (int, error) {
	start := time.Now()

	prompt := fmt.Sprintf(scorerPromptTemplate,
		query,
		assessment.Name,
		strings.Join(assessment.DomainNames(), ", "),
		truncateString(assessment.Description, 1000))

	content, err := postChat(ctx, c.Client, c.BaseURL, c.Model, prompt, scorerFormat)
	if err != nil {
		c.logger.Warn("relevance_scoring_failed",
			slog.String("url", assessment.CanonicalURL),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return 0, fmt.Errorf("failed to score %s: %w", assessment.CanonicalURL, err)
	}

	var result scorerResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return 0, fmt.Errorf("failed to parse scorer output %q: %w", truncateString(content, 200), err)
	}

	return result.Score, nil
}

var _ domain.RelevanceScorer = (*ScorerClient)(nil)
