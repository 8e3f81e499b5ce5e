package pipeline_test

import (
	"fmt"
	"testing"

	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/usecase/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(url string, similarity float64, source domain.DomainCode) domain.Candidate {
	code := source
	return domain.Candidate{
		Assessment: domain.Assessment{CanonicalURL: url, Name: url},
		Similarity: similarity,
		SourceDomain: func() *domain.DomainCode {
			if code == "" {
				return nil
			}
			return &code
		}(),
	}
}

func domainCounts(shortlist []domain.Candidate) map[domain.DomainCode]int {
	counts := make(map[domain.DomainCode]int)
	for _, c := range shortlist {
		if c.SourceDomain != nil {
			counts[*c.SourceDomain]++
		}
	}
	return counts
}

// Scenario from the selection design: domains {K, P} with k=10 give quotas
// of 5 each; when K can only supply 3, the shortfall of 2 flows to P.
func TestSelectBalanced_ShortfallRedistribution(t *testing.T) {
	var pool []domain.Candidate
	for i := 0; i < 3; i++ {
		pool = append(pool, candidate(fmt.Sprintf("https://x.com/k%d", i), 0.9-float64(i)/100, domain.DomainKnowledge))
	}
	for i := 0; i < 12; i++ {
		pool = append(pool, candidate(fmt.Sprintf("https://x.com/p%02d", i), 0.8-float64(i)/100, domain.DomainPersonality))
	}

	shortlist := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, 10)

	require.Len(t, shortlist, 10)
	counts := domainCounts(shortlist)
	assert.Equal(t, 3, counts[domain.DomainKnowledge])
	assert.Equal(t, 7, counts[domain.DomainPersonality])
}

// When every partition can fill its quota, no domain ever exceeds
// floor(k/|domains|)+1.
func TestSelectBalanced_QuotaPlusOneBound(t *testing.T) {
	domains := []domain.DomainCode{domain.DomainAbility, domain.DomainKnowledge, domain.DomainPersonality}
	var pool []domain.Candidate
	for _, d := range domains {
		for i := 0; i < 10; i++ {
			pool = append(pool, candidate(fmt.Sprintf("https://x.com/%s%02d", d, i), 0.9-float64(i)/100, d))
		}
	}

	for k := 1; k <= 10; k++ {
		shortlist := pipeline.SelectBalanced(pool, domains, k)
		require.Len(t, shortlist, k, "k=%d", k)
		quota := k / len(domains)
		for code, n := range domainCounts(shortlist) {
			assert.LessOrEqual(t, n, quota+1, "k=%d domain=%s", k, code)
		}
	}
}

func TestSelectBalanced_PreservesIntraDomainSimilarityOrder(t *testing.T) {
	pool := []domain.Candidate{
		candidate("https://x.com/k1", 0.9, domain.DomainKnowledge),
		candidate("https://x.com/k2", 0.7, domain.DomainKnowledge),
		candidate("https://x.com/k3", 0.8, domain.DomainKnowledge),
		candidate("https://x.com/p1", 0.85, domain.DomainPersonality),
		candidate("https://x.com/p2", 0.65, domain.DomainPersonality),
	}

	shortlist := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, 4)

	require.Len(t, shortlist, 4)
	var kOrder []string
	for _, c := range shortlist {
		if c.SourceDomain != nil && *c.SourceDomain == domain.DomainKnowledge {
			kOrder = append(kOrder, c.Assessment.CanonicalURL)
		}
	}
	assert.Equal(t, []string{"https://x.com/k1", "https://x.com/k3"}, kOrder)
}

func TestSelectBalanced_OverflowFillsExhaustedDomains(t *testing.T) {
	pool := []domain.Candidate{
		candidate("https://x.com/k1", 0.9, domain.DomainKnowledge),
		candidate("https://x.com/top1", 0.6, ""),
		candidate("https://x.com/top2", 0.7, ""),
	}

	shortlist := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge}, 3)

	require.Len(t, shortlist, 3)
	// Domain picks first, then overflow in similarity order.
	assert.Equal(t, "https://x.com/k1", shortlist[0].Assessment.CanonicalURL)
	assert.Equal(t, "https://x.com/top2", shortlist[1].Assessment.CanonicalURL)
	assert.Equal(t, "https://x.com/top1", shortlist[2].Assessment.CanonicalURL)
	assert.Nil(t, shortlist[1].SourceDomain)
}

func TestSelectBalanced_NoDuplicateURLs(t *testing.T) {
	pool := []domain.Candidate{
		candidate("https://x.com/a", 0.9, domain.DomainKnowledge),
		candidate("https://x.com/b", 0.8, domain.DomainPersonality),
		candidate("https://x.com/a", 0.7, ""),
	}

	shortlist := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, 10)

	require.Len(t, shortlist, 2)
	seen := make(map[string]bool)
	for _, c := range shortlist {
		assert.False(t, seen[c.Assessment.CanonicalURL])
		seen[c.Assessment.CanonicalURL] = true
	}
}

func TestSelectBalanced_MoreDomainsThanSlots(t *testing.T) {
	domains := domain.AllDomains()
	var pool []domain.Candidate
	for i, d := range domains {
		pool = append(pool, candidate(fmt.Sprintf("https://x.com/%s", d), 0.9-float64(i)/100, d))
	}

	// Quota floors to zero; round-robin hands the three slots to the
	// domains with the best candidates.
	shortlist := pipeline.SelectBalanced(pool, domains, 3)

	require.Len(t, shortlist, 3)
	assert.Equal(t, "https://x.com/A", shortlist[0].Assessment.CanonicalURL)
	assert.Equal(t, "https://x.com/B", shortlist[1].Assessment.CanonicalURL)
	assert.Equal(t, "https://x.com/C", shortlist[2].Assessment.CanonicalURL)
}

func TestSelectBalanced_ShortPoolReturnsAllDistinct(t *testing.T) {
	pool := []domain.Candidate{
		candidate("https://x.com/only", 0.9, domain.DomainKnowledge),
	}

	shortlist := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, 10)
	assert.Len(t, shortlist, 1)
}

func TestSelectBalanced_Deterministic(t *testing.T) {
	var pool []domain.Candidate
	for i := 0; i < 20; i++ {
		d := domain.DomainKnowledge
		if i%2 == 0 {
			d = domain.DomainPersonality
		}
		// Deliberate score ties to exercise the URL tie-break.
		pool = append(pool, candidate(fmt.Sprintf("https://x.com/c%02d", i), 0.5, d))
	}

	first := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, 10)
	for run := 0; run < 5; run++ {
		again := pipeline.SelectBalanced(pool, []domain.DomainCode{domain.DomainPersonality, domain.DomainKnowledge}, 10)
		assert.Equal(t, first, again)
	}
}

func TestSelectBalanced_EmptyInputs(t *testing.T) {
	assert.Nil(t, pipeline.SelectBalanced(nil, domain.AllDomains(), 10))
	assert.Nil(t, pipeline.SelectBalanced([]domain.Candidate{candidate("https://x.com/a", 0.9, "K")}, nil, 10))
	assert.Nil(t, pipeline.SelectBalanced([]domain.Candidate{candidate("https://x.com/a", 0.9, "K")}, domain.AllDomains(), 0))
}
