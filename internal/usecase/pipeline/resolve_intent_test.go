package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"assessment-recommender/internal/domain"
	"assessment-recommender/internal/usecase/pipeline"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type stubClassifier struct {
	labels []string
	err    error
}

func (s *stubClassifier) ClassifyDomains(ctx context.Context, query string) ([]string, error) {
	return s.labels, s.err
}

func TestResolveIntent_ValidatesAndDeduplicates(t *testing.T) {
	sc := &pipeline.StageContext{RecommendationID: "r1", Query: "java developer"}
	classifier := &stubClassifier{labels: []string{
		"Knowledge & Skills",
		"knowledge & skills", // duplicate, different case
		"Personality & Behaviour",
		"Astrology", // outside the vocabulary
	}}

	pipeline.ResolveIntent(context.Background(), sc, classifier, discardLogger())

	assert.Equal(t, []domain.DomainCode{domain.DomainKnowledge, domain.DomainPersonality}, sc.Domains)
}

func TestResolveIntent_EmptyResponseFallsBackToAllDomains(t *testing.T) {
	sc := &pipeline.StageContext{RecommendationID: "r2", Query: "xyz"}
	classifier := &stubClassifier{labels: nil}

	pipeline.ResolveIntent(context.Background(), sc, classifier, discardLogger())

	assert.Equal(t, domain.AllDomains(), sc.Domains)
}

func TestResolveIntent_ClassifierErrorFallsBackToAllDomains(t *testing.T) {
	sc := &pipeline.StageContext{RecommendationID: "r3", Query: "sales lead"}
	classifier := &stubClassifier{err: errors.New("timeout")}

	pipeline.ResolveIntent(context.Background(), sc, classifier, discardLogger())

	assert.Len(t, sc.Domains, 8)
}

func TestResolveIntent_OnlyInvalidLabelsFallsBackToAllDomains(t *testing.T) {
	sc := &pipeline.StageContext{RecommendationID: "r4", Query: "chef"}
	classifier := &stubClassifier{labels: []string{"Cooking", "Gardening"}}

	pipeline.ResolveIntent(context.Background(), sc, classifier, discardLogger())

	assert.Equal(t, domain.AllDomains(), sc.Domains)
}
