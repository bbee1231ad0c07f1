// Package vex folds CertifyVuln records into an OpenVEX document.
package vex

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
	"github.com/package-url/packageurl-go"
	"go.uber.org/multierr"
)

var logger = util.InitLogger()

// Fixed document metadata
const (
	Context     = "https://openvex.dev/ns"
	IDTemplate  = "https://seedwing.io/ROOT/generated/%s"
	Author      = "Seedwing Policy Engine"
	Role        = "Document Creator"
	Version     = "1"
	Tooling     = "Seedwing Policy Engine"
	Supplier    = "seedwing.io"
	StatusNotes = "Vulnerabilities reported by Guac"

	// NotSet stands in for a vulnerability ID that could not be resolved
	NotSet = "NOT_SET"
)

// TimestampParseError reports a record whose scan time is not RFC3339
type TimestampParseError struct {
	RecordID string
	Value    string
	Cause    error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("record %s: invalid timeScanned %q: %v", e.RecordID, e.Value, e.Cause)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Cause
}

// MissingPackageError reports a record whose package trie has no namespace or name
type MissingPackageError struct {
	RecordID string
}

func (e *MissingPackageError) Error() string {
	return fmt.Sprintf("record %s: package has no namespace/name entry", e.RecordID)
}

// Report describes the records Assemble skipped
type Report struct {
	Processed int
	Skipped   int
	// Err combines one error per skipped record, nil when nothing was skipped
	Err error
}

type options struct {
	now           func() time.Time
	newID         func() string
	resolveAllIDs bool
	purlProducts  bool
}

// Option configures Assemble
type Option func(*options)

// WithClock overrides the generation time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator overrides the document ID generator
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// WithResolveAllIDs takes CVE and GHSA IDs from the record instead of
// emitting NOT_SET for every non-OSV vulnerability
func WithResolveAllIDs() Option {
	return func(o *options) {
		o.resolveAllIDs = true
	}
}

// WithPurlProducts names products by package URL instead of bare package name
func WithPurlProducts() Option {
	return func(o *options) {
		o.purlProducts = true
	}
}

// NewDocument returns an empty document with generated metadata
func NewDocument(now time.Time, id string) *model.VexDocument {
	return &model.VexDocument{
		Metadata: model.VexMetadata{
			Context:   Context,
			ID:        fmt.Sprintf(IDTemplate, id),
			Author:    Author,
			Role:      Role,
			Timestamp: &now,
			Version:   Version,
			Tooling:   Tooling,
			Supplier:  Supplier,
		},
		Statements: []model.VexStatement{},
	}
}

// Assemble builds one statement per record, in record order. Records with an
// unparsable scan time or an empty package trie are skipped and reported;
// they never abort the document.
func Assemble(results []model.CertifyVuln, opts ...Option) (*model.VexDocument, Report) {
	o := options{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	now := o.now().UTC()
	doc := NewDocument(now, o.newID())
	report := Report{}

	for _, rec := range results {
		products, ok := productsFor(rec, o.purlProducts)
		if !ok {
			logger.Sugar().Warnf("Skipping record %s: package has no namespace/name entry", rec.ID)
			report.skip(&MissingPackageError{RecordID: rec.ID})
			continue
		}

		scanned, err := time.Parse(time.RFC3339, rec.TimeScanned)
		if err != nil {
			logger.Sugar().Warnf("Skipping record %s: invalid timeScanned %q", rec.ID, rec.TimeScanned)
			report.skip(&TimestampParseError{RecordID: rec.ID, Value: rec.TimeScanned, Cause: err})
			continue
		}

		id := ResolveID(rec.Vulnerability, o.resolveAllIDs)
		actionTime := now

		doc.Statements = append(doc.Statements, model.VexStatement{
			Vulnerability:            id,
			Timestamp:                &scanned,
			Products:                 products,
			Subcomponents:            []string{},
			Status:                   model.VexStatusAffected,
			StatusNotes:              StatusNotes,
			ActionStatement:          fmt.Sprintf("Review %s for details on the appropriate action", id),
			ActionStatementTimestamp: &actionTime,
		})
		report.Processed++
	}

	return doc, report
}

func (r *Report) skip(err error) {
	r.Skipped++
	r.Err = multierr.Append(r.Err, err)
}

// ResolveID picks the statement's vulnerability ID. OSV records use their
// first ID. CVE and GHSA IDs are only used when resolveAll is set; otherwise,
// and for NoVuln or an empty ID, the result is NotSet.
func ResolveID(v model.Vulnerability, resolveAll bool) string {
	id := ""
	switch v := v.(type) {
	case model.Osv:
		id = v.OsvID
	case model.Cve:
		if resolveAll {
			id = v.CveID
		}
	case model.Ghsa:
		if resolveAll {
			id = v.GhsaID
		}
	}

	if id == "" {
		return NotSet
	}
	return id
}

// productsFor takes the first namespace's first name. In purl mode every
// version of that name becomes a product. The bool is false when the trie has
// no such entry.
func productsFor(rec model.CertifyVuln, asPurl bool) ([]string, bool) {
	if len(rec.Package.Namespaces) == 0 || len(rec.Package.Namespaces[0].Names) == 0 {
		return nil, false
	}
	ns := rec.Package.Namespaces[0]
	name := ns.Names[0]

	if !asPurl {
		return []string{name.Name}, true
	}

	base := packageurl.PackageURL{
		Type:      rec.Package.Type,
		Namespace: ns.Namespace,
		Name:      name.Name,
	}
	if len(name.Versions) == 0 {
		return []string{base.ToString()}, true
	}

	products := make([]string, 0, len(name.Versions))
	for _, v := range name.Versions {
		purl := base
		purl.Version = v.Version
		purl.Subpath = v.Subpath
		products = append(products, purl.ToString())
	}
	return dedupe(products), true
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
