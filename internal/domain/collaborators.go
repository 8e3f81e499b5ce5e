package domain

import "context"

// DomainClassifier maps a free-text query to category labels. The raw
// labels are untrusted output of an external model; callers must validate
// them against the fixed vocabulary before use.
type DomainClassifier interface {
	ClassifyDomains(ctx context.Context, query string) ([]string, error)
}

// SearchHit is a single nearest-neighbor result from the similarity index.
type SearchHit struct {
	Assessment Assessment
	Similarity float64
}

// SimilaritySearcher runs nearest-neighbor search over the precomputed
// embedding index. A nil filter means unfiltered search; a non-nil filter
// restricts hits to assessments whose codes include the given domain.
// Results are ordered by descending similarity.
type SimilaritySearcher interface {
	Search(ctx context.Context, query string, filter *DomainCode, limit int) ([]SearchHit, error)
}

// RelevanceScorer judges a single candidate against the query, returning
// an integer in [1,5].
type RelevanceScorer interface {
	ScoreRelevance(ctx context.Context, query string, assessment Assessment) (int, error)
}

// VectorEncoder turns texts into embedding vectors via an external model.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// CatalogRecord pairs an assessment with its embedding for ingestion.
type CatalogRecord struct {
	Assessment Assessment
	Embedding  []float32
}

// CatalogRepository owns persistence of the read-only catalog.
type CatalogRepository interface {
	BulkInsert(ctx context.Context, records []CatalogRecord) error
	Count(ctx context.Context) (int, error)
}
