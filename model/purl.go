// Package model - Package identifier types shared by the parser and the GraphQL inputs
package model

import (
	"net/url"
	"strings"

	"github.com/package-url/packageurl-go"
)

// Qualifier is a single purl qualifier key/value pair
type Qualifier struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PackageIdentifier is the canonical structured form of a package URL.
// Optional components are nil when absent. Qualifiers is nil (never empty)
// when the purl carries none.
type PackageIdentifier struct {
	Type       string      `json:"type"`
	Namespace  *string     `json:"namespace"`
	Name       string      `json:"name"`
	Version    *string     `json:"version"`
	Subpath    *string     `json:"subpath"`
	Qualifiers []Qualifier `json:"qualifiers"`
}

// String rebuilds the canonical purl, keeping qualifier order
func (p *PackageIdentifier) String() string {
	purl := packageurl.PackageURL{
		Type:    p.Type,
		Name:    p.Name,
		Version: deref(p.Version),
	}
	purl.Namespace = deref(p.Namespace)
	purl.Subpath = deref(p.Subpath)

	// ToString sorts qualifiers, so they are spliced in here in stored order
	s := purl.ToString()
	if len(p.Qualifiers) == 0 {
		return s
	}

	pairs := make([]string, 0, len(p.Qualifiers))
	for _, q := range p.Qualifiers {
		pairs = append(pairs, q.Key+"="+url.QueryEscape(q.Value))
	}
	query := "?" + strings.Join(pairs, "&")

	if i := strings.Index(s, "#"); i >= 0 {
		return s[:i] + query + s[i:]
	}
	return s + query
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
