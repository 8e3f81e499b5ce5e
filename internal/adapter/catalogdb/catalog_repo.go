package catalogdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"assessment-recommender/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository for the ingest
// path. Records are upserted so a re-run of the loader refreshes the
// catalog in place.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const upsertQuery = `
INSERT INTO assessments (canonical_url, name, description, domain_codes,
                         duration_minutes, remote_supported, adaptive_supported, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (canonical_url) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	domain_codes = EXCLUDED.domain_codes,
	duration_minutes = EXCLUDED.duration_minutes,
	remote_supported = EXCLUDED.remote_supported,
	adaptive_supported = EXCLUDED.adaptive_supported,
	embedding = EXCLUDED.embedding`

// BulkInsert writes a batch of catalog records in one transaction.
func (r *CatalogRepository) BulkInsert(ctx context.Context, records []domain.CatalogRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		codes := make([]string, 0, len(rec.Assessment.DomainCodes))
		for _, c := range rec.Assessment.DomainCodes {
			codes = append(codes, string(c))
		}
		batch.Queue(upsertQuery,
			rec.Assessment.CanonicalURL,
			rec.Assessment.Name,
			rec.Assessment.Description,
			codes,
			rec.Assessment.DurationMinutes,
			rec.Assessment.RemoteSupported,
			rec.Assessment.AdaptiveSupported,
			pgvector.NewVector(rec.Embedding),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to upsert assessment: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of catalog rows.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

var _ domain.CatalogRepository = (*CatalogRepository)(nil)
