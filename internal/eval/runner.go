package eval

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"assessment-recommender/internal/usecase"
)

// LabeledQuery pairs a query with its ground-truth relevant URLs.
type LabeledQuery struct {
	Query        string
	RelevantURLs []string
}

// LoadLabeledQueries reads a two-column CSV (Query,Assessment_url), one
// row per query/URL pair, grouping rows by query in first-seen order.
// Column matching is case-insensitive.
func LoadLabeledQueries(r io.Reader) ([]LabeledQuery, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	queryCol, urlCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "query":
			queryCol = i
		case "assessment_url":
			urlCol = i
		}
	}
	if queryCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("csv must contain Query and Assessment_url columns, got %v", records[0])
	}

	index := make(map[string]int)
	var labeled []LabeledQuery
	for _, row := range records[1:] {
		if len(row) <= queryCol || len(row) <= urlCol {
			continue
		}
		query := strings.TrimSpace(row[queryCol])
		url := strings.TrimSpace(row[urlCol])
		if query == "" || url == "" {
			continue
		}
		i, ok := index[query]
		if !ok {
			i = len(labeled)
			index[query] = i
			labeled = append(labeled, LabeledQuery{Query: query})
		}
		labeled[i].RelevantURLs = append(labeled[i].RelevantURLs, url)
	}
	return labeled, nil
}

// LoadQueries reads an unlabeled CSV with a single Query column.
func LoadQueries(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	queryCol := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "query") {
			queryCol = i
		}
	}
	if queryCol < 0 {
		return nil, fmt.Errorf("csv must contain a Query column, got %v", records[0])
	}

	var queries []string
	for _, row := range records[1:] {
		if len(row) <= queryCol {
			continue
		}
		if q := strings.TrimSpace(row[queryCol]); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// Report is the outcome of an evaluation run.
type Report struct {
	Results    []QueryResult
	Mean       float64
	Applicable bool
	K          int
}

// Runner evaluates the recommender against labeled queries.
type Runner struct {
	recommender usecase.RecommendUsecase
	logger      *slog.Logger
}

func NewRunner(recommender usecase.RecommendUsecase, logger *slog.Logger) *Runner {
	return &Runner{recommender: recommender, logger: logger}
}

// Run computes Recall@K for each labeled query and the mean across the
// batch. A failed recommendation counts as zero recall for that query
// rather than aborting the run; queries without ground truth are reported
// as not applicable and excluded from the mean.
func (r *Runner) Run(ctx context.Context, labeled []LabeledQuery, k int) (*Report, error) {
	if len(labeled) == 0 {
		return nil, fmt.Errorf("no labeled queries to evaluate")
	}

	report := &Report{K: k, Results: make([]QueryResult, 0, len(labeled))}
	for _, lq := range labeled {
		start := time.Now()
		predicted, err := r.predict(ctx, lq.Query, k)
		if err != nil {
			r.logger.Warn("evaluation_query_failed",
				slog.String("query", lq.Query),
				slog.String("error", err.Error()))
		}

		recall, applicable := RecallAtK(predicted, lq.RelevantURLs, k)
		report.Results = append(report.Results, QueryResult{
			Query:      lq.Query,
			Recall:     recall,
			Applicable: applicable,
		})

		r.logger.Info("evaluation_query_completed",
			slog.String("query", lq.Query),
			slog.Float64("recall", recall),
			slog.Bool("applicable", applicable),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	}

	report.Mean, report.Applicable = MeanRecall(report.Results)
	return report, nil
}

// Predict returns the recommended URLs for a single query, for submission
// file generation.
func (r *Runner) Predict(ctx context.Context, query string, k int) ([]string, error) {
	return r.predict(ctx, query, k)
}

func (r *Runner) predict(ctx context.Context, query string, k int) ([]string, error) {
	out, err := r.recommender.Execute(ctx, usecase.RecommendInput{Query: query, K: k})
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		urls = append(urls, item.Assessment.CanonicalURL)
	}
	return urls, nil
}

// WriteSubmission writes Query,Assessment_url rows for a batch of queries.
func (r *Runner) WriteSubmission(ctx context.Context, queries []string, k int, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Query", "Assessment_url"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, query := range queries {
		urls, err := r.predict(ctx, query, k)
		if err != nil {
			r.logger.Warn("prediction_failed_skipping_query",
				slog.String("query", query),
				slog.String("error", err.Error()))
			continue
		}
		for _, url := range urls {
			if err := writer.Write([]string{query, url}); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
