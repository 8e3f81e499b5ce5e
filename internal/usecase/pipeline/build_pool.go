package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"assessment-recommender/internal/domain"
)

// BuildPool fans out one filtered similarity search per required domain,
// merges and deduplicates the hits by canonical URL, and tops the pool up
// from an unfiltered search when it falls short of the retrieval budget
// (Stage 2). A failed domain search is skipped with a warning; only total
// failure of every search, filtered and top-up alike, is escalated.
func BuildPool(
	ctx context.Context,
	sc *StageContext,
	searcher domain.SimilaritySearcher,
	logger *slog.Logger,
) error {
	type searchOutcome struct {
		code domain.DomainCode
		hits []domain.SearchHit
		err  error
	}

	searchStart := time.Now()
	outcomes := make(chan searchOutcome, len(sc.Domains))
	var wg sync.WaitGroup

	for _, code := range sc.Domains {
		wg.Add(1)
		go func(code domain.DomainCode) {
			defer wg.Done()
			filter := code
			hits, err := searcher.Search(ctx, sc.Query, &filter, sc.PerDomainLimit)
			outcomes <- searchOutcome{code: code, hits: hits, err: err}
		}(code)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var candidates []domain.Candidate
	failedDomains := 0
	for out := range outcomes {
		if out.err != nil {
			failedDomains++
			logger.Warn("domain_search_failed_skipping_domain",
				slog.String("recommendation_id", sc.RecommendationID),
				slog.String("domain", string(out.code)),
				slog.String("error", out.err.Error()))
			continue
		}
		code := out.code
		for _, hit := range out.hits {
			candidates = append(candidates, domain.Candidate{
				Assessment:   hit.Assessment,
				Similarity:   hit.Similarity,
				SourceDomain: &code,
			})
		}
	}

	pool := dedupeByCanonicalURL(candidates)

	logger.Info("domain_searches_completed",
		slog.String("recommendation_id", sc.RecommendationID),
		slog.Int("domain_count", len(sc.Domains)),
		slog.Int("failed_domains", failedDomains),
		slog.Int("distinct_candidates", len(pool)),
		slog.Int64("duration_ms", time.Since(searchStart).Milliseconds()))

	var topUpErr error
	if len(pool) < sc.RetrievalBudget {
		pool, topUpErr = topUpPool(ctx, sc, searcher, pool, logger)
	}

	if len(pool) == 0 && failedDomains == len(sc.Domains) && (topUpErr != nil || sc.RetrievalBudget == 0) {
		return domain.ErrTotalRetrievalFailure
	}

	sc.Pool = pool
	return nil
}

// topUpPool issues one unfiltered search for the remaining budget, merging
// hits whose canonical URL is not yet pooled with no source domain.
func topUpPool(
	ctx context.Context,
	sc *StageContext,
	searcher domain.SimilaritySearcher,
	pool []domain.Candidate,
	logger *slog.Logger,
) ([]domain.Candidate, error) {
	missing := sc.RetrievalBudget - len(pool)

	// Request extra headroom: unfiltered hits may duplicate pooled URLs.
	hits, err := searcher.Search(ctx, sc.Query, nil, sc.RetrievalBudget)
	if err != nil {
		logger.Warn("top_up_search_failed",
			slog.String("recommendation_id", sc.RecommendationID),
			slog.String("error", err.Error()))
		return pool, err
	}

	seen := make(map[string]bool, len(pool))
	for _, c := range pool {
		seen[c.Assessment.CanonicalURL] = true
	}

	added := 0
	for _, hit := range hits {
		if added >= missing {
			break
		}
		url := hit.Assessment.CanonicalURL
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		pool = append(pool, domain.Candidate{
			Assessment: hit.Assessment,
			Similarity: hit.Similarity,
		})
		added++
	}

	logger.Info("pool_topped_up",
		slog.String("recommendation_id", sc.RecommendationID),
		slog.Int("added", added),
		slog.Int("pool_size", len(pool)))

	return pool, nil
}

// dedupeByCanonicalURL keeps one candidate per canonical URL: the highest
// similarity wins, score ties broken by the lowest source-domain code so
// concurrent search arrival order can never leak into the result.
func dedupeByCanonicalURL(candidates []domain.Candidate) []domain.Candidate {
	best := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		url := c.Assessment.CanonicalURL
		if url == "" {
			continue
		}
		current, exists := best[url]
		if !exists || betterDuplicate(c, current) {
			best[url] = c
		}
	}

	pool := make([]domain.Candidate, 0, len(best))
	for _, c := range best {
		pool = append(pool, c)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Similarity != pool[j].Similarity {
			return pool[i].Similarity > pool[j].Similarity
		}
		return pool[i].Assessment.CanonicalURL < pool[j].Assessment.CanonicalURL
	})
	return pool
}

func betterDuplicate(a, b domain.Candidate) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return sourceDomainKey(a) < sourceDomainKey(b)
}

// sourceDomainKey orders tagged candidates by code; untagged candidates
// sort last so a domain-tagged duplicate always survives dedup.
func sourceDomainKey(c domain.Candidate) string {
	if c.SourceDomain == nil {
		return "~"
	}
	return string(*c.SourceDomain)
}
