package usecase_test

import (
	"testing"

	"assessment-recommender/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRecommendConfig_IsValid(t *testing.T) {
	cfg := usecase.DefaultRecommendConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.PerDomainLimit)
	assert.Equal(t, 40, cfg.RetrievalBudget)
	assert.Equal(t, 7, cfg.FinalK)
}

func TestRecommendConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usecase.RecommendConfig)
	}{
		{"zero per-domain limit", func(c *usecase.RecommendConfig) { c.PerDomainLimit = 0 }},
		{"zero budget", func(c *usecase.RecommendConfig) { c.RetrievalBudget = 0 }},
		{"k too large", func(c *usecase.RecommendConfig) { c.FinalK = 11 }},
		{"k too small", func(c *usecase.RecommendConfig) { c.FinalK = 0 }},
		{"negative rate limit", func(c *usecase.RecommendConfig) { c.ScoreRateLimit = -1 }},
		{"negative cache size", func(c *usecase.RecommendConfig) { c.CacheSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := usecase.DefaultRecommendConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRecommendConfig_ClampK(t *testing.T) {
	cfg := usecase.DefaultRecommendConfig()
	assert.Equal(t, 7, cfg.ClampK(0))
	assert.Equal(t, 5, cfg.ClampK(5))
	assert.Equal(t, 10, cfg.ClampK(25))
	assert.Equal(t, 1, cfg.ClampK(-4))
}
