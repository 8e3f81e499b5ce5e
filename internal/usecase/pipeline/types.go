package pipeline

import "assessment-recommender/internal/domain"

// StageContext carries data between pipeline stages for one request.
type StageContext struct {
	// Input
	RecommendationID string
	Query            string

	// Stage 1 output
	Domains []domain.DomainCode

	// Stage 2 output
	Pool []domain.Candidate

	// Stage 3 output
	Shortlist []domain.Candidate

	// Config values (set once at init)
	PerDomainLimit  int
	RetrievalBudget int
	FinalK          int
}

// ScoredCandidate is a shortlist entry after relevance scoring. Scored is
// false when the scoring collaborator failed for this candidate; such
// entries keep their similarity-rank position in the final ordering.
type ScoredCandidate struct {
	Candidate domain.Candidate
	Score     int
	Scored    bool
}
