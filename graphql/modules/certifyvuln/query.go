package certifyvuln

import (
	"github.com/ortelius/guac-vex/model"
)

// IngestCertifyVulnResponse is the data of the IngestCertifyVuln mutation
type IngestCertifyVulnResponse struct {
	IngestVulnerability struct {
		ID string `json:"id"`
	} `json:"ingestVulnerability"`
}

// AllCertifyVulnResponse is the data of the AllCertifyVuln query
type AllCertifyVulnResponse struct {
	CertifyVuln []CertifyVulnNode `json:"CertifyVuln"`
}

type idNode struct {
	ID string `json:"id"`
}

// VulnerabilityNode is the flattened union member as it comes off the wire
type VulnerabilityNode struct {
	Typename string   `json:"__typename"`
	ID       string   `json:"id"`
	Year     int      `json:"year"`
	CveID    []idNode `json:"cveId"`
	OsvID    []idNode `json:"osvId"`
	GhsaID   []idNode `json:"ghsaId"`
}

// CertifyVulnNode is one CertifyVuln record
type CertifyVulnNode struct {
	ID             string            `json:"id"`
	Package        model.PackageNode `json:"package"`
	Vulnerability  VulnerabilityNode `json:"vulnerability"`
	TimeScanned    string            `json:"timeScanned"`
	DBURI          string            `json:"dbUri"`
	DBVersion      string            `json:"dbVersion"`
	ScannerURI     string            `json:"scannerUri"`
	ScannerVersion string            `json:"scannerVersion"`
	Origin         string            `json:"origin"`
	Collector      string            `json:"collector"`
}

// Variant rebuilds the vulnerability sum type. Each variant takes the first
// declared ID; a missing ID list leaves the ID empty.
func (n VulnerabilityNode) Variant() (model.Vulnerability, error) {
	switch n.Typename {
	case "CVE":
		return model.Cve{CveID: firstID(n.CveID), Year: n.Year}, nil
	case "OSV":
		return model.Osv{OsvID: firstID(n.OsvID)}, nil
	case "GHSA":
		return model.Ghsa{GhsaID: firstID(n.GhsaID)}, nil
	case "NoVuln":
		return model.NoVuln{}, nil
	default:
		return nil, &MappingError{Reason: "unknown vulnerability typename " + n.Typename}
	}
}

// ToModel converts a node into a CertifyVuln record
func (n CertifyVulnNode) ToModel() (model.CertifyVuln, error) {
	vuln, err := n.Vulnerability.Variant()
	if err != nil {
		return model.CertifyVuln{}, err
	}
	return model.CertifyVuln{
		ID:             n.ID,
		Package:        n.Package,
		Vulnerability:  vuln,
		TimeScanned:    n.TimeScanned,
		DBURI:          n.DBURI,
		DBVersion:      n.DBVersion,
		ScannerURI:     n.ScannerURI,
		ScannerVersion: n.ScannerVersion,
		Origin:         n.Origin,
		Collector:      n.Collector,
	}, nil
}

func firstID(ids []idNode) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0].ID
}
