// Package graphql holds the GraphQL documents sent to the GUAC query service.
// Each document is parsed at start-up so a malformed document fails fast.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// Document is a parsed GraphQL operation
type Document struct {
	Query         string
	OperationName string
}

// IngestPackage creates (or finds) a package node
var IngestPackage = mustParse(`
mutation IngestPackage($pkg: PkgInputSpec!) {
  ingestPackage(pkg: $pkg) {
    id
  }
}`)

// IngestCertifyVuln links a package to a vulnerability with scan metadata
var IngestCertifyVuln = mustParse(`
mutation IngestCertifyVuln($pkg: PkgInputSpec!, $vulnerability: VulnerabilityInput!, $certifyVuln: VulnerabilityMetaDataInput!) {
  ingestVulnerability(pkg: $pkg, vulnerability: $vulnerability, certifyVuln: $certifyVuln) {
    id
  }
}`)

// AllCertifyVuln lists every CertifyVuln record
var AllCertifyVuln = mustParse(`
query AllCertifyVuln {
  CertifyVuln(certifyVulnSpec: {}) {
    id
    package {
      id
      type
      namespaces {
        id
        namespace
        names {
          id
          name
          versions {
            id
            version
            qualifiers {
              key
              value
            }
            subpath
          }
        }
      }
    }
    vulnerability {
      __typename
      ... on CVE {
        id
        year
        cveId {
          id
        }
      }
      ... on OSV {
        id
        osvId {
          id
        }
      }
      ... on GHSA {
        id
        ghsaId {
          id
        }
      }
      ... on NoVuln {
        id
      }
    }
    timeScanned
    dbUri
    dbVersion
    scannerUri
    scannerVersion
    origin
    collector
  }
}`)

// Ping is the cheapest valid query, used for readiness probes
var Ping = mustParse(`query Ping { __typename }`)

// Parse validates a GraphQL document holding exactly one operation
func Parse(query string) (Document, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return Document{}, err
	}

	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}
	if len(ops) != 1 {
		return Document{}, fmt.Errorf("expected exactly one operation, found %d", len(ops))
	}

	name := ""
	if ops[0].Name != nil {
		name = ops[0].Name.Value
	}
	return Document{Query: query, OperationName: name}, nil
}

func mustParse(query string) Document {
	doc, err := Parse(query)
	if err != nil {
		panic(fmt.Sprintf("invalid GraphQL document: %v", err))
	}
	return doc
}
