// Package model - Vulnerability sum type and scan metadata
package model

import "time"

// Vulnerability is a closed set of vulnerability sources: Cve, Osv, Ghsa or NoVuln.
// Only this package can add cases.
type Vulnerability interface {
	isVulnerability()
}

// Cve identifies a vulnerability by its CVE ID
type Cve struct {
	CveID string `json:"cve_id"`
	Year  int    `json:"year"`
}

// Osv identifies a vulnerability by its OSV ID
type Osv struct {
	OsvID string `json:"osv_id"`
}

// Ghsa identifies a vulnerability by its GitHub advisory ID
type Ghsa struct {
	GhsaID string `json:"ghsa_id"`
}

// NoVuln records that a scan found no known vulnerability
type NoVuln struct{}

func (Cve) isVulnerability()    {}
func (Osv) isVulnerability()    {}
func (Ghsa) isVulnerability()   {}
func (NoVuln) isVulnerability() {}

// VulnerabilityMetadata describes the scan that produced a certification
type VulnerabilityMetadata struct {
	DBURI          string    `json:"db_uri"`
	DBVersion      string    `json:"db_version"`
	ScannerURI     string    `json:"scanner_uri"`
	ScannerVersion string    `json:"scanner_version"`
	TimeScanned    time.Time `json:"time_scanned"`
	Collector      string    `json:"collector"`
	Origin         string    `json:"origin"`
}
