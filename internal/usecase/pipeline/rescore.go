package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"assessment-recommender/internal/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	minRelevanceScore = 1
	maxRelevanceScore = 5
)

// Rescore asks the scoring collaborator for a relevance judgment per
// shortlist entry and produces the final deterministic ordering (Stage 4).
// Calls run in parallel behind an optional rate limiter; the sort happens
// only after every score or fallback is resolved. A candidate whose score
// call failed is not pushed to the bottom: it is reinserted at its original
// similarity-rank position, so total scoring failure degrades the output to
// plain similarity order, never to an empty or truncated result.
func Rescore(
	ctx context.Context,
	sc *StageContext,
	scorer domain.RelevanceScorer,
	limiter *rate.Limiter,
	logger *slog.Logger,
) []ScoredCandidate {
	shortlist := sc.Shortlist
	if len(shortlist) == 0 {
		return nil
	}

	scoreStart := time.Now()
	results := make([]ScoredCandidate, len(shortlist))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range shortlist {
		i, c := i, c
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					results[i] = ScoredCandidate{Candidate: c, Score: minRelevanceScore}
					return nil
				}
			}
			score, err := scorer.ScoreRelevance(gctx, sc.Query, c.Assessment)
			if err != nil {
				logger.Warn("relevance_scoring_failed_using_similarity_rank",
					slog.String("recommendation_id", sc.RecommendationID),
					slog.String("url", c.Assessment.CanonicalURL),
					slog.String("error", err.Error()))
				results[i] = ScoredCandidate{Candidate: c, Score: minRelevanceScore}
				return nil
			}
			results[i] = ScoredCandidate{Candidate: c, Score: clampScore(score), Scored: true}
			return nil
		})
	}
	_ = g.Wait() // scoring failures are per-candidate, never fatal

	ranked := rankScored(results)

	failed := 0
	for _, r := range results {
		if !r.Scored {
			failed++
		}
	}
	logger.Info("relevance_scoring_completed",
		slog.String("recommendation_id", sc.RecommendationID),
		slog.Int("candidate_count", len(shortlist)),
		slog.Int("failed_count", failed),
		slog.Int64("duration_ms", time.Since(scoreStart).Milliseconds()))

	if len(ranked) > sc.FinalK {
		ranked = ranked[:sc.FinalK]
	}
	return ranked
}

// rankScored sorts successfully scored candidates by score descending,
// ties broken by original similarity descending then canonical URL
// ascending, and splices every failed-score candidate back in at the
// position it held in the similarity-ordered shortlist.
func rankScored(results []ScoredCandidate) []ScoredCandidate {
	ranked := make([]ScoredCandidate, 0, len(results))
	for _, r := range results {
		if r.Scored {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Candidate.Similarity != ranked[j].Candidate.Similarity {
			return ranked[i].Candidate.Similarity > ranked[j].Candidate.Similarity
		}
		return ranked[i].Candidate.Assessment.CanonicalURL < ranked[j].Candidate.Assessment.CanonicalURL
	})

	for i, r := range results {
		if r.Scored {
			continue
		}
		pos := i
		if pos > len(ranked) {
			pos = len(ranked)
		}
		ranked = append(ranked, ScoredCandidate{})
		copy(ranked[pos+1:], ranked[pos:])
		ranked[pos] = r
	}

	return ranked
}

func clampScore(score int) int {
	if score < minRelevanceScore {
		return minRelevanceScore
	}
	if score > maxRelevanceScore {
		return maxRelevanceScore
	}
	return score
}
