// Package eval implements offline evaluation of recommendation runs:
// Recall@K per query over canonicalized URLs and the mean across a batch.
package eval

import "assessment-recommender/internal/domain"

// RecallAtK computes |canonicalize(predicted[:k]) ∩ canonicalize(truth)| /
// |truth|. The second return value is false when the ground truth is
// empty: such queries are not applicable and must never be counted as
// zero recall. URL matching uses the same canonicalization as the
// pipeline's dedup, so evaluation can never disagree with serving.
func RecallAtK(predicted []string, groundTruth []string, k int) (float64, bool) {
	truth := make(map[string]bool, len(groundTruth))
	for _, u := range groundTruth {
		if c := domain.Canonicalize(u); c != "" {
			truth[c] = true
		}
	}
	if len(truth) == 0 {
		return 0, false
	}

	if k > len(predicted) {
		k = len(predicted)
	}
	top := make(map[string]bool, k)
	for _, u := range predicted[:k] {
		if c := domain.Canonicalize(u); c != "" {
			top[c] = true
		}
	}

	hits := 0
	for u := range top {
		if truth[u] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), true
}

// QueryResult is one query's evaluation outcome. Applicable is false when
// the query had no ground truth.
type QueryResult struct {
	Query      string
	Recall     float64
	Applicable bool
}

// MeanRecall averages the applicable per-query recalls. The second return
// value is false when no query was applicable.
func MeanRecall(results []QueryResult) (float64, bool) {
	sum := 0.0
	n := 0
	for _, r := range results {
		if !r.Applicable {
			continue
		}
		sum += r.Recall
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
