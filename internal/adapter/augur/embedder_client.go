package augur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"assessment-recommender/internal/domain"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedderClient implements domain.VectorEncoder against the embed
// endpoint. It is used for both query encoding at serve time and catalog
// encoding at ingest time.
type EmbedderClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

func NewEmbedderClient(baseURL, model string, client *http.Client, logger *slog.Logger) *EmbedderClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &EmbedderClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		logger:  logger,
	}
}

func (e *EmbedderClient) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()

	jsonPayload, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)

	var embeddings [][]float32
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create embed request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.Client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call embed endpoint: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("embed endpoint returned %d: %s", resp.StatusCode, truncateString(string(body), 500))
			if resp.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		var respBody embedResponse
		if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode embed response: %w", err))
		}
		embeddings = respBody.Embeddings
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		e.logger.Warn("embedding_failed",
			slog.Int("text_count", len(texts)),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return nil, err
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embed endpoint returned %d embeddings for %d inputs", len(embeddings), len(texts))
	}

	e.logger.Info("embedding_completed",
		slog.Int("embedding_count", len(embeddings)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return embeddings, nil
}

var _ domain.VectorEncoder = (*EmbedderClient)(nil)
