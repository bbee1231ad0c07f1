// Package collector ingests vulnerability scan results into GUAC.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
)

var logger = util.InitLogger()

// Ingester is the subset of the GUAC client the collector needs
type Ingester interface {
	IngestPackage(ctx context.Context, purl string) (string, error)
	IngestCertifyVuln(ctx context.Context, purl string, vuln model.Vulnerability, meta model.VulnerabilityMetadata) (string, error)
}

// Result is the outcome for one purl
type Result struct {
	Purl      string
	PackageID string
	RecordID  string
	Affected  bool
}

// ReadOSV decodes a single OSV record
func ReadOSV(r io.Reader) (models.Vulnerability, error) {
	var vuln models.Vulnerability
	if err := json.NewDecoder(r).Decode(&vuln); err != nil {
		return models.Vulnerability{}, fmt.Errorf("decoding OSV record: %w", err)
	}
	if vuln.ID == "" {
		return models.Vulnerability{}, fmt.Errorf("OSV record has no id")
	}
	return vuln, nil
}

// CollectOSV certifies each purl against record: Osv{record.ID} when its
// version falls in one of the record's affected ranges for that package,
// NoVuln otherwise. Packages are ingested before their certification. The
// first failure stops the run and is returned with the results so far.
func CollectOSV(ctx context.Context, ingester Ingester, record models.Vulnerability, purls []string, meta model.VulnerabilityMetadata) ([]Result, error) {
	results := make([]Result, 0, len(purls))

	for _, purl := range purls {
		id, err := util.ParsePackageIdentifier(purl)
		if err != nil {
			return results, err
		}

		affected, err := isAffected(purl, id, record)
		if err != nil {
			return results, err
		}

		var vuln model.Vulnerability = model.NoVuln{}
		if affected {
			vuln = model.Osv{OsvID: record.ID}
		}

		pkgID, err := ingester.IngestPackage(ctx, purl)
		if err != nil {
			return results, err
		}
		recID, err := ingester.IngestCertifyVuln(ctx, purl, vuln, meta)
		if err != nil {
			return results, err
		}

		logger.Sugar().Infof("Certified %s against %s (affected=%v)", purl, record.ID, affected)
		results = append(results, Result{Purl: purl, PackageID: pkgID, RecordID: recID, Affected: affected})
	}

	return results, nil
}

func isAffected(purl string, id *model.PackageIdentifier, record models.Vulnerability) (bool, error) {
	if id.Version == nil {
		return false, nil
	}

	base, err := util.BasePURL(purl)
	if err != nil {
		return false, err
	}

	var matching []models.Affected
	for _, affected := range record.Affected {
		if affectedBase(affected) == base {
			matching = append(matching, affected)
		}
	}
	return util.IsVersionAffectedAny(*id.Version, matching), nil
}

func affectedBase(affected models.Affected) string {
	if affected.Package.Purl != "" {
		if base, err := util.BasePURL(affected.Package.Purl); err == nil {
			return base
		}
	}
	return util.BasePURLFromComponents(string(affected.Package.Ecosystem), affected.Package.Name)
}
