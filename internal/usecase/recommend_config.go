package usecase

import "fmt"

const (
	// MinFinalK and MaxFinalK bound the recommendation size.
	MinFinalK = 1
	MaxFinalK = 10
)

// RecommendConfig holds tunable parameters for the recommendation pipeline.
// The catalog gives no canonical retrieval sizes, so both limits are
// exposed as configuration.
type RecommendConfig struct {
	// PerDomainLimit is the number of hits requested from each
	// domain-filtered similarity search.
	PerDomainLimit int

	// RetrievalBudget is the target size of the deduplicated candidate
	// pool before balanced selection.
	RetrievalBudget int

	// FinalK is the default recommendation size when the request does not
	// specify one. Always clamped to [MinFinalK, MaxFinalK].
	FinalK int

	// ScoreRateLimit caps relevance-scoring calls per second; zero
	// disables the limiter.
	ScoreRateLimit float64

	// CacheSize and CacheTTLMinutes control the recommendation cache.
	// CacheSize zero disables caching.
	CacheSize       int
	CacheTTLMinutes int
}

// DefaultRecommendConfig returns the documented defaults (N=20, R=40, K=7).
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		PerDomainLimit:  20,
		RetrievalBudget: 40,
		FinalK:          7,
		ScoreRateLimit:  10,
		CacheSize:       256,
		CacheTTLMinutes: 15,
	}
}

// Validate checks the configuration values.
func (c RecommendConfig) Validate() error {
	if c.PerDomainLimit <= 0 {
		return fmt.Errorf("perDomainLimit must be positive, got %d", c.PerDomainLimit)
	}
	if c.RetrievalBudget <= 0 {
		return fmt.Errorf("retrievalBudget must be positive, got %d", c.RetrievalBudget)
	}
	if c.FinalK < MinFinalK || c.FinalK > MaxFinalK {
		return fmt.Errorf("finalK must be in [%d,%d], got %d", MinFinalK, MaxFinalK, c.FinalK)
	}
	if c.ScoreRateLimit < 0 {
		return fmt.Errorf("scoreRateLimit must be non-negative, got %f", c.ScoreRateLimit)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cacheSize must be non-negative, got %d", c.CacheSize)
	}
	return nil
}

// ClampK normalizes a requested recommendation size: zero falls back to
// the configured default, anything else is clamped into [1,10].
func (c RecommendConfig) ClampK(k int) int {
	if k == 0 {
		k = c.FinalK
	}
	if k < MinFinalK {
		return MinFinalK
	}
	if k > MaxFinalK {
		return MaxFinalK
	}
	return k
}
