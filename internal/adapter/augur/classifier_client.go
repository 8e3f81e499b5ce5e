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

const classifierPromptTemplate = `You are classifying a hiring query into assessment categories.

Categories:
- Ability & Aptitude: cognitive ability, numerical, verbal and logical reasoning
- Biodata & Situational Judgment: background data and workplace scenario judgement
- Competencies: behavioural competency frameworks
- Development & 360: development planning and multi-rater feedback
- Assessment Exercises: in-tray, case study and group exercises
- Knowledge & Skills: technical knowledge and hard skills such as programming languages
- Personality & Behaviour: personality traits and work styles
- Simulations: interactive job simulations

Return the category names that apply to the query below. Pick every
category that is plausibly relevant; an empty list means you cannot tell.

Query: %s`

var classifierFormat = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"domains": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required": []string{"domains"},
}

type classifierResult struct {
	Domains []string `json:"domains"`
}

// ClassifierClient implements domain.DomainClassifier against the chat
// endpoint using structured JSON output.
type ClassifierClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

func NewClassifierClient(baseURL, model string, client *http.Client, logger *slog.Logger) *ClassifierClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ClassifierClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		logger:  logger,
	}
}

// ClassifyDomains returns the category labels the model picked for the
// query. Labels are returned as-is; validation against the known category
// set happens in the pipeline.
func (c *ClassifierClient) ClassifyDomains(ctx context.Context, query string) ([]string, error) {
	start := time.Now()

	c.logger.Info("domain_classification_started",
		slog.String("query", truncateString(query, 100)),
		slog.String("model", c.Model))

	prompt := fmt.Sprintf(classifierPromptTemplate, query)
	content, err := postChat(ctx, c.Client, c.BaseURL, c.Model, prompt, classifierFormat)
	if err != nil {
		c.logger.Warn("domain_classification_failed",
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("failed to classify query: %w", err)
	}

	var result classifierResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classifier output %q: %w", truncateString(content, 200), err)
	}

	c.logger.Info("domain_classification_completed",
		slog.Int("label_count", len(result.Domains)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return result.Domains, nil
}

var _ domain.DomainClassifier = (*ClassifierClient)(nil)
