// Package util provides utility functions for working with Package URLs (PURLs)
// and version comparisons for vulnerability checking.
//
//revive:disable-next-line:var-naming
package util

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ortelius/guac-vex/model"
	"github.com/package-url/packageurl-go"
)

// ParseError reports a malformed package URL
type ParseError struct {
	Input string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid package url %q: %v", e.Input, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParsePackageIdentifier parses a purl into its canonical structured form.
// Qualifiers keep their document order and are nil when the purl has none.
func ParsePackageIdentifier(purlStr string) (*model.PackageIdentifier, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, &ParseError{Input: purlStr, Cause: err}
	}
	if parsed.Type == "" {
		return nil, &ParseError{Input: purlStr, Cause: fmt.Errorf("missing type")}
	}
	if parsed.Name == "" {
		return nil, &ParseError{Input: purlStr, Cause: fmt.Errorf("missing name")}
	}

	id := &model.PackageIdentifier{
		Type:      parsed.Type,
		Namespace: optional(parsed.Namespace),
		Name:      parsed.Name,
		Version:   optional(parsed.Version),
		Subpath:   optional(parsed.Subpath),
	}

	id.Qualifiers = documentOrderQualifiers(purlStr, parsed.Qualifiers)

	return id, nil
}

// documentOrderQualifiers returns the parsed qualifiers in the order their
// keys appear in raw. packageurl-go sorts them by key.
func documentOrderQualifiers(raw string, parsed packageurl.Qualifiers) []model.Qualifier {
	if len(parsed) == 0 {
		return nil
	}

	values := parsed.Map()
	qualifiers := make([]model.Qualifier, 0, len(parsed))
	seen := make(map[string]bool, len(parsed))

	for _, key := range rawQualifierKeys(raw) {
		value, ok := values[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		qualifiers = append(qualifiers, model.Qualifier{Key: key, Value: value})
	}

	// anything the raw scan missed keeps the library order
	for _, q := range parsed {
		if !seen[q.Key] {
			seen[q.Key] = true
			qualifiers = append(qualifiers, model.Qualifier{Key: q.Key, Value: q.Value})
		}
	}
	return qualifiers
}

// rawQualifierKeys lists the normalised qualifier keys between '?' and '#'
func rawQualifierKeys(raw string) []string {
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	i := strings.Index(raw, "?")
	if i < 0 {
		return nil
	}

	var keys []string
	for _, pair := range strings.Split(raw[i+1:], "&") {
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EcosystemToPurlType converts OSV ecosystem to PURL type
func EcosystemToPurlType(ecosystem string) string {
	mapping := map[string]string{
		"npm":        "npm",
		"PyPI":       "pypi",
		"Maven":      "maven",
		"Go":         "golang",
		"NuGet":      "nuget",
		"RubyGems":   "gem",
		"crates.io":  "cargo",
		"Packagist":  "composer",
		"Pub":        "pub",
		"Hex":        "hex",
		"Alpine":     "apk",
		"Wolfi":      "apk",
		"Chainguard": "apk",
		"Debian":     "deb",
		"Ubuntu":     "deb",
	}

	if purlType, exists := mapping[ecosystem]; exists {
		return purlType
	}

	for key, value := range mapping {
		if strings.EqualFold(key, ecosystem) {
			return value
		}
	}

	return strings.ToLower(ecosystem)
}

// BasePURL strips version, qualifiers and subpath so purls from different
// sources can be compared.
// Example: "pkg:apk/wolfi/glibc@2.42-r4" -> "pkg:apk/wolfi/glibc"
func BasePURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", &ParseError{Input: purlStr, Cause: err}
	}

	base := packageurl.PackageURL{
		Type:      EcosystemToPurlType(parsed.Type),
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
	}

	return strings.ToLower(base.ToString()), nil
}

// BasePURLFromComponents builds a base purl from an OSV ecosystem and package name.
// Maven "group:artifact", npm "@scope/name" and Go module paths are split into
// namespace and name.
func BasePURLFromComponents(ecosystem, name string) string {
	purlType := EcosystemToPurlType(ecosystem)

	namespace := ""
	switch purlType {
	case "maven":
		if group, artifact, ok := strings.Cut(name, ":"); ok {
			namespace, name = group, artifact
		}
	default:
		if i := strings.LastIndex(name, "/"); i > 0 {
			namespace, name = name[:i], name[i+1:]
		}
	}

	base := packageurl.PackageURL{Type: purlType, Namespace: namespace, Name: name}
	return strings.ToLower(base.ToString())
}
