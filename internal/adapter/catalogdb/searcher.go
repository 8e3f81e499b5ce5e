// Package catalogdb implements the assessment catalog on PostgreSQL with
// pgvector: similarity search for serving and bulk loading for ingest.
package catalogdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"assessment-recommender/internal/domain"
)

// VectorSearcher implements domain.SimilaritySearcher by encoding the
// query and running a cosine-distance scan over the assessments table.
type VectorSearcher struct {
	pool    *pgxpool.Pool
	encoder domain.VectorEncoder
	logger  *slog.Logger
}

func NewVectorSearcher(pool *pgxpool.Pool, encoder domain.VectorEncoder, logger *slog.Logger) *VectorSearcher {
	return &VectorSearcher{pool: pool, encoder: encoder, logger: logger}
}

const searchQuery = `
SELECT canonical_url, name, description, domain_codes, duration_minutes,
       remote_supported, adaptive_supported,
       1 - (embedding <=> $1) AS similarity
FROM assessments
ORDER BY embedding <=> $1
LIMIT $2`

const searchQueryFiltered = `
SELECT canonical_url, name, description, domain_codes, duration_minutes,
       remote_supported, adaptive_supported,
       1 - (embedding <=> $1) AS similarity
FROM assessments
WHERE $3 = ANY(domain_codes)
ORDER BY embedding <=> $1
LIMIT $2`

// Search returns up to limit assessments nearest to the query embedding,
// optionally restricted to one domain code. Similarity is cosine, higher
// is closer.
func (s *VectorSearcher) Search(ctx context.Context, query string, filter *domain.DomainCode, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		return []domain.SearchHit{}, nil
	}

	start := time.Now()

	vectors, err := s.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}
	embedding := pgvector.NewVector(vectors[0])

	var rows pgx.Rows
	if filter != nil {
		rows, err = s.pool.Query(ctx, searchQueryFiltered, embedding, limit, string(*filter))
	} else {
		rows, err = s.pool.Query(ctx, searchQuery, embedding, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var (
			a          domain.Assessment
			codes      []string
			similarity float64
		)
		if err := rows.Scan(&a.CanonicalURL, &a.Name, &a.Description, &codes,
			&a.DurationMinutes, &a.RemoteSupported, &a.AdaptiveSupported, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		for _, c := range codes {
			if code, ok := domain.ParseDomainCode(c); ok {
				a.DomainCodes = append(a.DomainCodes, code)
			}
		}
		hits = append(hits, domain.SearchHit{Assessment: a, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assessment rows: %w", err)
	}

	s.logger.Debug("vector_search_completed",
		slog.Int("hit_count", len(hits)),
		slog.Bool("filtered", filter != nil),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return hits, nil
}

var _ domain.SimilaritySearcher = (*VectorSearcher)(nil)
