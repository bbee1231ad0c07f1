// Package certifyvuln defines the REST API types for ingesting packages and
// vulnerability certifications.
package certifyvuln

import (
	"fmt"
	"strings"

	"github.com/ortelius/guac-vex/model"
)

// PackageRequest is the body of POST /packages
type PackageRequest struct {
	Purl string `json:"purl"`
}

// VulnerabilityRequest names one vulnerability. Type is osv, cve, ghsa or none.
type VulnerabilityRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Year int    `json:"year,omitempty"`
}

// CertifyVulnRequest is the body of POST /certify-vuln
type CertifyVulnRequest struct {
	Purl          string                      `json:"purl"`
	Vulnerability VulnerabilityRequest        `json:"vulnerability"`
	Metadata      model.VulnerabilityMetadata `json:"metadata"`
}

// IngestResponse returns the ID of the created node
type IngestResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ToModel converts the request into the vulnerability sum type
func (r VulnerabilityRequest) ToModel() (model.Vulnerability, error) {
	switch strings.ToLower(r.Type) {
	case "osv":
		return model.Osv{OsvID: r.ID}, nil
	case "cve":
		return model.Cve{CveID: r.ID, Year: r.Year}, nil
	case "ghsa":
		return model.Ghsa{GhsaID: r.ID}, nil
	case "none", "novuln":
		return model.NoVuln{}, nil
	default:
		return nil, fmt.Errorf("unknown vulnerability type %q", r.Type)
	}
}
