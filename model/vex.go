// Package model - OpenVEX document types
package model

import "time"

// VexStatusAffected is the only status this bridge emits
const VexStatusAffected = "affected"

// VexMetadata is the document header
type VexMetadata struct {
	Context   string     `json:"context" yaml:"context"`
	ID        string     `json:"id" yaml:"id"`
	Author    string     `json:"author" yaml:"author"`
	Role      string     `json:"role" yaml:"role"`
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Version   string     `json:"version" yaml:"version"`
	Tooling   string     `json:"tooling,omitempty" yaml:"tooling,omitempty"`
	Supplier  string     `json:"supplier,omitempty" yaml:"supplier,omitempty"`
}

// VexStatement is one product/vulnerability assertion
type VexStatement struct {
	Vulnerability            string     `json:"vulnerability" yaml:"vulnerability"`
	Timestamp                *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Products                 []string   `json:"products" yaml:"products"`
	Subcomponents            []string   `json:"subcomponents" yaml:"subcomponents"`
	Status                   string     `json:"status" yaml:"status"`
	StatusNotes              string     `json:"status_notes,omitempty" yaml:"status_notes,omitempty"`
	Justification            string     `json:"justification,omitempty" yaml:"justification,omitempty"`
	ImpactStatement          string     `json:"impact_statement,omitempty" yaml:"impact_statement,omitempty"`
	ActionStatement          string     `json:"action_statement,omitempty" yaml:"action_statement,omitempty"`
	ActionStatementTimestamp *time.Time `json:"action_statement_timestamp,omitempty" yaml:"action_statement_timestamp,omitempty"`
}

// VexDocument is a complete OpenVEX report
type VexDocument struct {
	Metadata   VexMetadata    `json:"metadata" yaml:"metadata"`
	Statements []VexStatement `json:"statements" yaml:"statements"`
}
