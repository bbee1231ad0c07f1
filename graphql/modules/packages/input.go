// Package packages shapes package URLs into the query service's PkgInputSpec.
package packages

import (
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
)

// PackageQualifierInputSpec is one qualifier of a PkgInputSpec
type PackageQualifierInputSpec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PkgInputSpec identifies a package in ingest mutations. Absent optional
// parts serialise as null.
type PkgInputSpec struct {
	Type       string                      `json:"type"`
	Namespace  *string                     `json:"namespace"`
	Name       string                      `json:"name"`
	Version    *string                     `json:"version"`
	Qualifiers []PackageQualifierInputSpec `json:"qualifiers"`
	Subpath    *string                     `json:"subpath"`
}

// FromIdentifier converts a parsed identifier. Qualifiers stay nil when the
// identifier has none.
func FromIdentifier(id *model.PackageIdentifier) PkgInputSpec {
	spec := PkgInputSpec{
		Type:      id.Type,
		Namespace: id.Namespace,
		Name:      id.Name,
		Version:   id.Version,
		Subpath:   id.Subpath,
	}
	for _, q := range id.Qualifiers {
		spec.Qualifiers = append(spec.Qualifiers, PackageQualifierInputSpec{Key: q.Key, Value: q.Value})
	}
	return spec
}

// FromPURL parses purl and converts it. Errors are *util.ParseError.
func FromPURL(purl string) (PkgInputSpec, error) {
	id, err := util.ParsePackageIdentifier(purl)
	if err != nil {
		return PkgInputSpec{}, err
	}
	return FromIdentifier(id), nil
}

// IngestPackageResponse is the data of the IngestPackage mutation
type IngestPackageResponse struct {
	IngestPackage struct {
		ID string `json:"id"`
	} `json:"ingestPackage"`
}
