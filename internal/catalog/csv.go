// Package catalog parses assessment catalog exports for ingestion.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"assessment-recommender/internal/domain"
)

// ParseCSV reads a catalog export with columns name, url, description,
// test_type, duration, remote_testing and adaptive_irt. Header matching
// is case-insensitive; rows with an empty name or url are skipped. URLs
// are canonicalized on the way in.
func ParseCSV(r io.Reader) ([]domain.Assessment, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "url"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv must contain a %s column, got %v", required, records[0])
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var assessments []domain.Assessment
	for _, row := range records[1:] {
		name := field(row, "name")
		url := domain.Canonicalize(field(row, "url"))
		if name == "" || url == "" {
			continue
		}

		a := domain.Assessment{
			CanonicalURL:      url,
			Name:              name,
			Description:       field(row, "description"),
			DomainCodes:       parseTestTypes(field(row, "test_type")),
			DurationMinutes:   parseDuration(field(row, "duration")),
			RemoteSupported:   parseYesNo(field(row, "remote_testing")),
			AdaptiveSupported: parseYesNo(field(row, "adaptive_irt")),
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}

// parseTestTypes accepts both list-ish notation ("['K', 'P']") and
// plain separated labels ("Knowledge & Skills; Personality & Behavior").
func parseTestTypes(raw string) []domain.DomainCode {
	cleaned := strings.NewReplacer("[", "", "]", "", "'", "", "\"", "").Replace(raw)
	tokens := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || r == ';'
	})

	seen := make(map[domain.DomainCode]bool)
	var codes []domain.DomainCode
	for _, token := range tokens {
		code, ok := domain.ParseDomainLabel(strings.TrimSpace(token))
		if !ok {
			continue
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	domain.SortDomains(codes)
	return codes
}

func parseDuration(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseYesNo(raw string) bool {
	switch strings.ToLower(raw) {
	case "yes", "true", "y", "1":
		return true
	default:
		return false
	}
}

// EmbeddingText renders the document embedded for similarity search:
// the name, category names and description joined the same way at
// ingest and query time.
func EmbeddingText(a domain.Assessment) string {
	parts := []string{a.Name}
	if names := a.DomainNames(); len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}
	if a.Description != "" {
		parts = append(parts, a.Description)
	}
	return strings.Join(parts, "\n")
}
