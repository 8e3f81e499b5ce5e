package pipeline

import (
	"context"
	"log/slog"

	"assessment-recommender/internal/domain"
)

// ResolveIntent maps the query to a non-empty set of required domain codes
// (Stage 1). The classifier output is untrusted: labels outside the fixed
// vocabulary are discarded and duplicates collapsed. Classifier failure or
// an empty validated set falls back to the full domain set so the request
// stays answerable; recall degrades but availability is preserved.
func ResolveIntent(
	ctx context.Context,
	sc *StageContext,
	classifier domain.DomainClassifier,
	logger *slog.Logger,
) {
	labels, err := classifier.ClassifyDomains(ctx, sc.Query)
	if err != nil {
		logger.Warn("domain_classification_failed_using_all_domains",
			slog.String("recommendation_id", sc.RecommendationID),
			slog.String("error", err.Error()))
		sc.Domains = domain.AllDomains()
		return
	}

	seen := make(map[domain.DomainCode]bool, len(labels))
	var codes []domain.DomainCode
	var discarded []string
	for _, label := range labels {
		code, ok := domain.ParseDomainLabel(label)
		if !ok {
			discarded = append(discarded, label)
			continue
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	if len(discarded) > 0 {
		logger.Warn("domain_labels_discarded",
			slog.String("recommendation_id", sc.RecommendationID),
			slog.Any("labels", discarded))
	}

	if len(codes) == 0 {
		logger.Warn("domain_classification_empty_using_all_domains",
			slog.String("recommendation_id", sc.RecommendationID),
			slog.Int("raw_label_count", len(labels)))
		sc.Domains = domain.AllDomains()
		return
	}

	sc.Domains = domain.SortDomains(codes)

	logger.Info("domain_intent_resolved",
		slog.String("recommendation_id", sc.RecommendationID),
		slog.Any("domains", sc.Domains))
}
