package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/usecase/pipeline"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// RecommendInput defines the input parameters for Recommend.
type RecommendInput struct {
	Query string
	// K is the requested recommendation size; zero uses the configured
	// default. Values outside [1,10] are clamped.
	K int
}

// RecommendedItem is one entry of the final ordered recommendation.
type RecommendedItem struct {
	Assessment     domain.Assessment
	RelevanceScore int
	Similarity     float64
}

// RecommendOutput defines the output for Recommend.
type RecommendOutput struct {
	RecommendationID string
	Items            []RecommendedItem
}

// RecommendUsecase runs the full candidate selection and ranking pipeline.
type RecommendUsecase interface {
	Execute(ctx context.Context, input RecommendInput) (*RecommendOutput, error)
}

type recommendUsecase struct {
	classifier domain.DomainClassifier
	searcher   domain.SimilaritySearcher
	scorer     domain.RelevanceScorer
	cfg        RecommendConfig
	logger     *slog.Logger
	cache      *expirable.LRU[string, []RecommendedItem]
	limiter    *rate.Limiter
}

// NewRecommendUsecase wires the three external collaborators into the
// pipeline. The request is stateless; the only shared state is the
// read-only domain table and an optional recommendation cache.
func NewRecommendUsecase(
	classifier domain.DomainClassifier,
	searcher domain.SimilaritySearcher,
	scorer domain.RelevanceScorer,
	cfg RecommendConfig,
	logger *slog.Logger,
) RecommendUsecase {
	var cache *expirable.LRU[string, []RecommendedItem]
	if cfg.CacheSize > 0 {
		cache = expirable.NewLRU[string, []RecommendedItem](
			cfg.CacheSize, nil, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	}
	var limiter *rate.Limiter
	if cfg.ScoreRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ScoreRateLimit), 1)
	}
	return &recommendUsecase{
		classifier: classifier,
		searcher:   searcher,
		scorer:     scorer,
		cfg:        cfg,
		logger:     logger,
		cache:      cache,
		limiter:    limiter,
	}
}

func (u *recommendUsecase) Execute(ctx context.Context, input RecommendInput) (*RecommendOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	k := u.cfg.ClampK(input.K)

	cacheKey := fmt.Sprintf("%d|%s", k, input.Query)
	if u.cache != nil {
		if items, ok := u.cache.Get(cacheKey); ok {
			u.logger.Info("recommendation_cache_hit", slog.String("query", input.Query))
			return &RecommendOutput{RecommendationID: uuid.New().String(), Items: items}, nil
		}
	}

	sc := &pipeline.StageContext{
		RecommendationID: uuid.New().String(),
		Query:            input.Query,
		PerDomainLimit:   u.cfg.PerDomainLimit,
		RetrievalBudget:  u.cfg.RetrievalBudget,
		FinalK:           k,
	}

	pipelineStart := time.Now()

	// Stage 1: domain intent (never fails; degrades to the full set).
	pipeline.ResolveIntent(ctx, sc, u.classifier, u.logger)

	// Stage 2: domain-aware candidate pooling.
	if err := pipeline.BuildPool(ctx, sc, u.searcher, u.logger); err != nil {
		return nil, fmt.Errorf("failed to build candidate pool: %w", err)
	}
	if len(sc.Pool) == 0 {
		return nil, fmt.Errorf("no candidates found for query: %w", domain.ErrTotalRetrievalFailure)
	}

	// Stage 3: balanced selection.
	sc.Shortlist = pipeline.SelectBalanced(sc.Pool, sc.Domains, k)

	// Stage 4: relevance rescoring and final ordering.
	ranked := pipeline.Rescore(ctx, sc, u.scorer, u.limiter, u.logger)

	items := make([]RecommendedItem, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, RecommendedItem{
			Assessment:     r.Candidate.Assessment,
			RelevanceScore: r.Score,
			Similarity:     r.Candidate.Similarity,
		})
	}

	u.logger.Info("recommendation_completed",
		slog.String("recommendation_id", sc.RecommendationID),
		slog.Int("domain_count", len(sc.Domains)),
		slog.Int("pool_size", len(sc.Pool)),
		slog.Int("result_count", len(items)),
		slog.Int64("duration_ms", time.Since(pipelineStart).Milliseconds()))

	if u.cache != nil {
		u.cache.Add(cacheKey, items)
	}

	return &RecommendOutput{RecommendationID: sc.RecommendationID, Items: items}, nil
}
