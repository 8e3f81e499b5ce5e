package domain

import (
	"sort"
	"strings"
)

// DomainCode is one of the eight fixed assessment category codes.
type DomainCode string

const (
	DomainAbility     DomainCode = "A" // Ability & Aptitude
	DomainBiodata     DomainCode = "B" // Biodata & Situational Judgment
	DomainCompetency  DomainCode = "C" // Competencies
	DomainDevelopment DomainCode = "D" // Development & 360
	DomainExercises   DomainCode = "E" // Assessment Exercises
	DomainKnowledge   DomainCode = "K" // Knowledge & Skills
	DomainPersonality DomainCode = "P" // Personality & Behaviour
	DomainSimulations DomainCode = "S" // Simulations
)

// domainNames is the fixed code-to-category table, loaded once and never mutated.
var domainNames = map[DomainCode]string{
	DomainAbility:     "Ability & Aptitude",
	DomainBiodata:     "Biodata & Situational Judgment",
	DomainCompetency:  "Competencies",
	DomainDevelopment: "Development & 360",
	DomainExercises:   "Assessment Exercises",
	DomainKnowledge:   "Knowledge & Skills",
	DomainPersonality: "Personality & Behaviour",
	DomainSimulations: "Simulations",
}

// AllDomains returns every domain code in lexicographic order.
func AllDomains() []DomainCode {
	return []DomainCode{
		DomainAbility, DomainBiodata, DomainCompetency, DomainDevelopment,
		DomainExercises, DomainKnowledge, DomainPersonality, DomainSimulations,
	}
}

// Name returns the human-readable category for the code, or "" for unknown codes.
func (c DomainCode) Name() string {
	return domainNames[c]
}

// ParseDomainCode validates a single-letter code against the fixed alphabet.
func ParseDomainCode(s string) (DomainCode, bool) {
	code := DomainCode(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := domainNames[code]
	return code, ok
}

// ParseDomainLabel maps a classifier label to a domain code. Both category
// names and bare codes are accepted; matching is case-insensitive.
func ParseDomainLabel(label string) (DomainCode, bool) {
	trimmed := strings.TrimSpace(label)
	if len(trimmed) == 1 {
		return ParseDomainCode(trimmed)
	}
	for code, name := range domainNames {
		if strings.EqualFold(trimmed, name) {
			return code, true
		}
	}
	return "", false
}

// SortDomains orders codes lexicographically in place and returns the slice.
func SortDomains(codes []DomainCode) []DomainCode {
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Assessment is an immutable catalog record keyed by canonical URL.
type Assessment struct {
	CanonicalURL      string
	Name              string
	Description       string
	DomainCodes       []DomainCode
	DurationMinutes   int
	RemoteSupported   bool
	AdaptiveSupported bool
}

// DomainNames expands the record's codes into category names, skipping
// anything outside the fixed alphabet.
func (a Assessment) DomainNames() []string {
	names := make([]string, 0, len(a.DomainCodes))
	for _, code := range a.DomainCodes {
		if name := code.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// HasDomain reports whether the assessment belongs to the given category.
func (a Assessment) HasDomain(code DomainCode) bool {
	for _, c := range a.DomainCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Candidate is a pooled, not-yet-finalized retrieval hit. SourceDomain is
// nil for hits added by the unfiltered top-up search.
type Candidate struct {
	Assessment   Assessment
	Similarity   float64
	SourceDomain *DomainCode
}
