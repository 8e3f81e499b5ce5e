// Package di wires configuration, adapters and usecases into runnable
// application components.
package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"assessment-recommender/internal/adapter/augur"
	"assessment-recommender/internal/adapter/catalogdb"
	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/infra/config"
	"assessment-recommender/internal/infra/httpclient"
	"assessment-recommender/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Recommender usecase.RecommendUsecase

	// Ingest path
	Encoder     domain.VectorEncoder
	CatalogRepo domain.CatalogRepository
}

// NewApplicationComponents wires all dependencies from config and
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	augurHTTP := httpclient.NewPooledClient(time.Duration(cfg.Augur.TimeoutSeconds) * time.Second)
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.Embedder.TimeoutSeconds) * time.Second)

	classifier := augur.NewClassifierClient(cfg.Augur.URL, cfg.Augur.ClassifierModel, augurHTTP, log)
	scorer := augur.NewScorerClient(cfg.Augur.URL, cfg.Augur.ScorerModel, augurHTTP, log)
	encoder := augur.NewEmbedderClient(cfg.Embedder.URL, cfg.Embedder.Model, embedderHTTP, log)

	searcher := catalogdb.NewVectorSearcher(pool, encoder, log)
	catalogRepo := catalogdb.NewCatalogRepository(pool)

	recommendCfg := recommendConfigFrom(cfg.Recommend)
	if err := recommendCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}

	recommender := usecase.NewRecommendUsecase(classifier, searcher, scorer, recommendCfg, log)

	return &ApplicationComponents{
		Recommender: recommender,
		Encoder:     encoder,
		CatalogRepo: catalogRepo,
	}, nil
}

// recommendConfigFrom maps environment values onto the usecase config,
// keeping usecase defaults for anything left unset.
func recommendConfigFrom(c config.RecommendConfig) usecase.RecommendConfig {
	cfg := usecase.DefaultRecommendConfig()
	if c.PerDomainLimit > 0 {
		cfg.PerDomainLimit = c.PerDomainLimit
	}
	if c.RetrievalBudget > 0 {
		cfg.RetrievalBudget = c.RetrievalBudget
	}
	if c.FinalK > 0 {
		cfg.FinalK = c.FinalK
	}
	if c.ScoreRateLimit > 0 {
		cfg.ScoreRateLimit = float64(c.ScoreRateLimit)
	}
	if c.CacheSize > 0 {
		cfg.CacheSize = c.CacheSize
	}
	if c.CacheTTLMinutes > 0 {
		cfg.CacheTTLMinutes = c.CacheTTLMinutes
	}
	return cfg
}
