package domain_test

import (
	"testing"

	"assessment-recommender/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize_SchemeAndPrefixVariants(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "http and https are equivalent",
			a:    "http://www.shl.com/products/java-8",
			b:    "https://www.shl.com/products/java-8",
		},
		{
			name: "catalog prefix is non-semantic",
			a:    "https://x.com/solutions/a/?ref=1",
			b:    "http://x.com/a/",
		},
		{
			name: "trailing slash ignored",
			a:    "https://x.com/a/",
			b:    "https://x.com/a",
		},
		{
			name: "query string and fragment ignored",
			a:    "https://x.com/a?utm_source=mail#details",
			b:    "https://x.com/a",
		},
		{
			name: "host case ignored",
			a:    "https://WWW.SHL.com/a",
			b:    "https://www.shl.com/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, domain.Canonicalize(tt.a), domain.Canonicalize(tt.b))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://x.com/solutions/a/?ref=1",
		"http://X.com/Solutions-Path/b/",
		"not a url at all",
		"x.com/a/",
		"",
		"https://x.com/solutions/solutions/a",
	}

	for _, in := range inputs {
		once := domain.Canonicalize(in)
		assert.Equal(t, once, domain.Canonicalize(once), "input %q", in)
	}
}

func TestCanonicalize_MalformedInputIsTotal(t *testing.T) {
	// Never panics, never errors, always returns something comparable.
	assert.Equal(t, "", domain.Canonicalize("   "))
	assert.Equal(t, "x.com/a", domain.Canonicalize("X.com/a/?q=1"))
	assert.NotPanics(t, func() { domain.Canonicalize("http://[::1]:namedport") })
}

func TestCanonicalize_PreservesPathCase(t *testing.T) {
	// Only the host is case-folded; path segments keep their case.
	assert.Equal(t, "https://x.com/Java-8", domain.Canonicalize("https://X.com/Java-8/"))
}
