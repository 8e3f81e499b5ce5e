package pipeline

import (
	"sort"

	"assessment-recommender/internal/domain"
)

// SelectBalanced allocates the output budget k across the required domains
// (Stage 3). Each domain gets a base quota of k/|domains| slots filled in
// similarity order. The shortfall left by short partitions is handed out in
// round-robin cycles over domains that still have candidates, highest
// current head score first, one slot per domain per cycle. Slots that no
// domain can fill come from the unfiltered overflow partition, appended
// after the domain picks. The result never holds two entries with the same
// canonical URL and has length min(k, distinct pool size).
func SelectBalanced(pool []domain.Candidate, domains []domain.DomainCode, k int) []domain.Candidate {
	if k <= 0 || len(pool) == 0 || len(domains) == 0 {
		return nil
	}

	partitions := make(map[domain.DomainCode][]domain.Candidate, len(domains))
	var overflow []domain.Candidate
	for _, c := range pool {
		if c.SourceDomain != nil {
			partitions[*c.SourceDomain] = append(partitions[*c.SourceDomain], c)
		} else {
			overflow = append(overflow, c)
		}
	}
	for code := range partitions {
		sortBySimilarity(partitions[code])
	}
	sortBySimilarity(overflow)

	ordered := append([]domain.DomainCode(nil), domains...)
	domain.SortDomains(ordered)

	quota := k / len(domains)
	taken := make(map[domain.DomainCode]int, len(domains))
	selected := make(map[string]bool, k)

	var picks []domain.Candidate
	take := func(code domain.DomainCode) bool {
		part := partitions[code]
		for taken[code] < len(part) {
			c := part[taken[code]]
			taken[code]++
			if selected[c.Assessment.CanonicalURL] {
				continue
			}
			selected[c.Assessment.CanonicalURL] = true
			picks = append(picks, c)
			return true
		}
		return false
	}

	// Base quota per domain, similarity order within each partition.
	for _, code := range ordered {
		for i := 0; i < quota && len(picks) < k; i++ {
			if !take(code) {
				break
			}
		}
	}

	// Shortfall redistribution: one slot per domain per cycle, visiting
	// domains by their current best remaining candidate.
	for len(picks) < k {
		remaining := remainingByHeadScore(ordered, partitions, taken)
		if len(remaining) == 0 {
			break
		}
		for _, code := range remaining {
			if len(picks) >= k {
				break
			}
			take(code)
		}
	}

	sortBySimilarity(picks)

	// Whatever the domain partitions could not cover comes from the
	// unfiltered top-up hits, best first.
	for _, c := range overflow {
		if len(picks) >= k {
			break
		}
		if selected[c.Assessment.CanonicalURL] {
			continue
		}
		selected[c.Assessment.CanonicalURL] = true
		picks = append(picks, c)
	}

	return picks
}

// remainingByHeadScore lists domains that still have unselected candidates,
// ordered by the score of their next candidate (ties by canonical URL,
// then code) so redistribution is independent of search arrival order.
func remainingByHeadScore(
	ordered []domain.DomainCode,
	partitions map[domain.DomainCode][]domain.Candidate,
	taken map[domain.DomainCode]int,
) []domain.DomainCode {
	var remaining []domain.DomainCode
	head := make(map[domain.DomainCode]domain.Candidate)
	for _, code := range ordered {
		if taken[code] < len(partitions[code]) {
			remaining = append(remaining, code)
			head[code] = partitions[code][taken[code]]
		}
	}
	sort.Slice(remaining, func(i, j int) bool {
		hi, hj := head[remaining[i]], head[remaining[j]]
		if hi.Similarity != hj.Similarity {
			return hi.Similarity > hj.Similarity
		}
		if hi.Assessment.CanonicalURL != hj.Assessment.CanonicalURL {
			return hi.Assessment.CanonicalURL < hj.Assessment.CanonicalURL
		}
		return remaining[i] < remaining[j]
	})
	return remaining
}

func sortBySimilarity(candidates []domain.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Assessment.CanonicalURL < candidates[j].Assessment.CanonicalURL
	})
}
