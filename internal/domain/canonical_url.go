package domain

import (
	"net/url"
	"strings"
)

// catalogPathPrefix is a non-semantic prefix the catalog site serves
// interchangeably; both forms point at the same assessment page.
const catalogPathPrefix = "/solutions/"

// Canonicalize normalizes an assessment URL into the unique key used for
// deduplication and ground-truth matching. It never fails: malformed input
// is normalized best-effort. The same implementation backs both the
// pipeline and offline evaluation so the two can never disagree.
//
// Normalization order: force http to https, strip the catalog path prefix,
// drop query string and fragment, strip one trailing slash, lower-case the
// host. Canonicalize is idempotent.
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return canonicalizeFallback(s)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "http" {
		scheme = "https"
	}

	path := stripCatalogPrefix(u.EscapedPath())
	path = strings.TrimSuffix(path, "/")

	return scheme + "://" + strings.ToLower(u.Host) + path
}

// canonicalizeFallback handles input the URL parser rejects or cannot
// locate a host in. The whole string is lower-cased since the host cannot
// be isolated.
func canonicalizeFallback(s string) string {
	s = strings.ToLower(s)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = stripCatalogPrefix(s)
	return strings.TrimSuffix(s, "/")
}

func stripCatalogPrefix(path string) string {
	for strings.HasPrefix(path, catalogPathPrefix) {
		path = path[len(catalogPathPrefix)-1:]
	}
	return path
}
