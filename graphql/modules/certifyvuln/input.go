// Package certifyvuln maps vulnerabilities and scan metadata into the query
// service's input shapes and decodes CertifyVuln query results.
package certifyvuln

import (
	"fmt"
	"time"

	"github.com/ortelius/guac-vex/model"
)

// MappingError reports a vulnerability or metadata value that cannot be
// expressed as service input
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string {
	return "cannot map vulnerability input: " + e.Reason
}

// CVEInputSpec identifies a CVE
type CVEInputSpec struct {
	CveID string `json:"cveId"`
	Year  int    `json:"year"`
}

// OSVInputSpec identifies an OSV record
type OSVInputSpec struct {
	OsvID string `json:"osvId"`
}

// GHSAInputSpec identifies a GitHub advisory
type GHSAInputSpec struct {
	GhsaID string `json:"ghsaId"`
}

// VulnerabilityInput must carry exactly one non-nil field. The others
// serialise as explicit nulls.
type VulnerabilityInput struct {
	Cve    *CVEInputSpec  `json:"cve"`
	Osv    *OSVInputSpec  `json:"osv"`
	Ghsa   *GHSAInputSpec `json:"ghsa"`
	NoVuln *bool          `json:"noVuln"`
}

// VulnerabilityMetaDataInput carries scan provenance
type VulnerabilityMetaDataInput struct {
	DBURI          string `json:"dbUri"`
	DBVersion      string `json:"dbVersion"`
	ScannerURI     string `json:"scannerUri"`
	ScannerVersion string `json:"scannerVersion"`
	TimeScanned    string `json:"timeScanned"`
	Collector      string `json:"collector"`
	Origin         string `json:"origin"`
}

// MapVulnerability flattens the vulnerability sum type into the
// exactly-one-of input object
func MapVulnerability(v model.Vulnerability) (VulnerabilityInput, error) {
	switch v := v.(type) {
	case model.Cve:
		return VulnerabilityInput{Cve: &CVEInputSpec{CveID: v.CveID, Year: v.Year}}, nil
	case model.Osv:
		return VulnerabilityInput{Osv: &OSVInputSpec{OsvID: v.OsvID}}, nil
	case model.Ghsa:
		return VulnerabilityInput{Ghsa: &GHSAInputSpec{GhsaID: v.GhsaID}}, nil
	case model.NoVuln:
		noVuln := true
		return VulnerabilityInput{NoVuln: &noVuln}, nil
	case nil:
		return VulnerabilityInput{}, &MappingError{Reason: "vulnerability is nil"}
	default:
		return VulnerabilityInput{}, &MappingError{Reason: fmt.Sprintf("unknown vulnerability type %T", v)}
	}
}

// MapMetadata copies scan metadata field for field. It cannot fail today;
// the error result leaves room for validation.
func MapMetadata(m model.VulnerabilityMetadata) (VulnerabilityMetaDataInput, error) {
	return VulnerabilityMetaDataInput{
		DBURI:          m.DBURI,
		DBVersion:      m.DBVersion,
		ScannerURI:     m.ScannerURI,
		ScannerVersion: m.ScannerVersion,
		TimeScanned:    m.TimeScanned.UTC().Format(time.RFC3339Nano),
		Collector:      m.Collector,
		Origin:         m.Origin,
	}, nil
}

// Set counts the non-nil variant fields
func (in VulnerabilityInput) Set() int {
	n := 0
	if in.Cve != nil {
		n++
	}
	if in.Osv != nil {
		n++
	}
	if in.Ghsa != nil {
		n++
	}
	if in.NoVuln != nil {
		n++
	}
	return n
}
