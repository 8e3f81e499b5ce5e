package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeClassifier struct {
	labels []string
	err    error
}

func (f *fakeClassifier) ClassifyDomains(ctx context.Context, query string) ([]string, error) {
	return f.labels, f.err
}

// fakeSearcher returns a deterministic catalog slice per domain filter and
// counts searches for cache assertions.
type fakeSearcher struct {
	searches atomic.Int64
	fail     bool
}

func (f *fakeSearcher) Search(ctx context.Context, query string, filter *domain.DomainCode, limit int) ([]domain.SearchHit, error) {
	f.searches.Add(1)
	if f.fail {
		return nil, errors.New("index down")
	}
	prefix := "all"
	if filter != nil {
		prefix = string(*filter)
	}
	hits := make([]domain.SearchHit, 0, limit)
	for i := 0; i < limit && i < 12; i++ {
		hits = append(hits, domain.SearchHit{
			Assessment: domain.Assessment{
				CanonicalURL: fmt.Sprintf("https://x.com/%s-%02d", prefix, i),
				Name:         fmt.Sprintf("%s assessment %d", prefix, i),
				DomainCodes:  []domain.DomainCode{domain.DomainKnowledge},
			},
			Similarity: 0.95 - float64(i)/100,
		})
	}
	return hits, nil
}

type fakeScorer struct{}

func (fakeScorer) ScoreRelevance(ctx context.Context, query string, a domain.Assessment) (int, error) {
	return 4, nil
}

func testConfig() usecase.RecommendConfig {
	cfg := usecase.DefaultRecommendConfig()
	cfg.ScoreRateLimit = 0 // keep tests fast
	return cfg
}

func TestRecommend_ReturnsBoundedDeduplicatedList(t *testing.T) {
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{labels: []string{"Knowledge & Skills", "Personality & Behaviour"}},
		&fakeSearcher{}, fakeScorer{}, testConfig(), discardLogger())

	out, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "java developer", K: 10})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(out.Items), 1)
	assert.LessOrEqual(t, len(out.Items), 10)
	seen := make(map[string]bool)
	for _, item := range out.Items {
		url := item.Assessment.CanonicalURL
		assert.False(t, seen[url], "duplicate canonical URL %s", url)
		seen[url] = true
	}
}

func TestRecommend_ClassifierFailureStillRecommends(t *testing.T) {
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{err: errors.New("llm timeout")},
		&fakeSearcher{}, fakeScorer{}, testConfig(), discardLogger())

	out, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "xyz"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Items)
}

func TestRecommend_EmptyQueryRejected(t *testing.T) {
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{}, &fakeSearcher{}, fakeScorer{}, testConfig(), discardLogger())

	_, err := uc.Execute(context.Background(), usecase.RecommendInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestRecommend_TotalRetrievalFailureSurfaced(t *testing.T) {
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{labels: []string{"K"}},
		&fakeSearcher{fail: true}, fakeScorer{}, testConfig(), discardLogger())

	_, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "java"})
	assert.ErrorIs(t, err, domain.ErrTotalRetrievalFailure)
}

func TestRecommend_CacheServesRepeatQueries(t *testing.T) {
	searcher := &fakeSearcher{}
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{labels: []string{"K"}},
		searcher, fakeScorer{}, testConfig(), discardLogger())

	first, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "java", K: 5})
	require.NoError(t, err)
	searchesAfterFirst := searcher.searches.Load()

	second, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "java", K: 5})
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, searchesAfterFirst, searcher.searches.Load(), "cached request must not hit the index")
}

func TestRecommend_KClamping(t *testing.T) {
	uc := usecase.NewRecommendUsecase(
		&fakeClassifier{labels: []string{"K"}},
		&fakeSearcher{}, fakeScorer{}, testConfig(), discardLogger())

	out, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "java", K: 50})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out.Items), 10)

	out, err = uc.Execute(context.Background(), usecase.RecommendInput{Query: "sql", K: -3})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
}
