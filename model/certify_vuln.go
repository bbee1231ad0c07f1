// Package model - CertifyVuln records as returned by the GUAC query service
package model

// PackageVersion is a version node of a package trie
type PackageVersion struct {
	ID         string      `json:"id"`
	Version    string      `json:"version"`
	Qualifiers []Qualifier `json:"qualifiers"`
	Subpath    string      `json:"subpath"`
}

// PackageName is a name node of a package trie
type PackageName struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Versions []PackageVersion `json:"versions"`
}

// PackageNamespace is a namespace node of a package trie
type PackageNamespace struct {
	ID        string        `json:"id"`
	Namespace string        `json:"namespace"`
	Names     []PackageName `json:"names"`
}

// PackageNode is the package trie attached to a certification
type PackageNode struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Namespaces []PackageNamespace `json:"namespaces"`
}

// CertifyVuln asserts that a package has (or lacks) a vulnerability.
// TimeScanned stays in its wire form (RFC3339) until the VEX assembler parses it.
type CertifyVuln struct {
	ID             string
	Package        PackageNode
	Vulnerability  Vulnerability
	TimeScanned    string
	DBURI          string
	DBVersion      string
	ScannerURI     string
	ScannerVersion string
	Origin         string
	Collector      string
}
