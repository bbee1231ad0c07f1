package guactest

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/guac-vex/model"
)

const kindKey = "kind"

// store is the in-memory backing data of the fake service
type store struct {
	mu       sync.Mutex
	nextID   int
	packages map[string]map[string]interface{}
	records  []map[string]interface{}
	failure  string
	requests int
}

func newStore() *store {
	return &store{packages: map[string]map[string]interface{}{}}
}

func (s *store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *store) createSchema() (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"CertifyVuln": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(certifyVulnType))),
				Args: graphql.FieldConfigArgument{
					"certifyVulnSpec": &graphql.ArgumentConfig{Type: certifyVulnSpec},
				},
				Resolve: s.resolveCertifyVuln,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"ingestPackage": &graphql.Field{
				Type: graphql.NewNonNull(packageType),
				Args: graphql.FieldConfigArgument{
					"pkg": &graphql.ArgumentConfig{Type: graphql.NewNonNull(pkgInputSpec)},
				},
				Resolve: s.resolveIngestPackage,
			},
			"ingestVulnerability": &graphql.Field{
				Type: graphql.NewNonNull(certifyVulnType),
				Args: graphql.FieldConfigArgument{
					"pkg":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(pkgInputSpec)},
					"vulnerability": &graphql.ArgumentConfig{Type: graphql.NewNonNull(vulnerabilityInput)},
					"certifyVuln":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(vulnerabilityMetaDataInput)},
				},
				Resolve: s.resolveIngestVulnerability,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func (s *store) resolveCertifyVuln(p graphql.ResolveParams) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != "" {
		return nil, errors.New(s.failure)
	}

	filter := ""
	if spec, ok := p.Args["certifyVulnSpec"].(map[string]interface{}); ok {
		filter, _ = spec["id"].(string)
	}

	out := make([]map[string]interface{}, 0, len(s.records))
	for _, rec := range s.records {
		if filter != "" && rec["id"] != filter {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *store) resolveIngestPackage(p graphql.ResolveParams) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != "" {
		return nil, errors.New(s.failure)
	}
	return s.upsertPackage(p.Args["pkg"].(map[string]interface{})), nil
}

func (s *store) resolveIngestVulnerability(p graphql.ResolveParams) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != "" {
		return nil, errors.New(s.failure)
	}

	pkgArg := p.Args["pkg"].(map[string]interface{})
	pkg, ok := s.packages[packageKey(pkgArg)]
	if !ok {
		return nil, fmt.Errorf("package %s has not been ingested", packageKey(pkgArg))
	}

	vuln, err := s.vulnerabilityFromInput(p.Args["vulnerability"].(map[string]interface{}))
	if err != nil {
		return nil, err
	}

	meta := p.Args["certifyVuln"].(map[string]interface{})
	rec := map[string]interface{}{
		"id":             s.id("certifyvuln"),
		"package":        pkg,
		"vulnerability":  vuln,
		"timeScanned":    meta["timeScanned"],
		"dbUri":          meta["dbUri"],
		"dbVersion":      meta["dbVersion"],
		"scannerUri":     meta["scannerUri"],
		"scannerVersion": meta["scannerVersion"],
		"origin":         meta["origin"],
		"collector":      meta["collector"],
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// vulnerabilityFromInput enforces the exactly-one-of contract of VulnerabilityInput
func (s *store) vulnerabilityFromInput(in map[string]interface{}) (map[string]interface{}, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("exactly one of cve, osv, ghsa or noVuln must be set, got %d", len(in))
	}

	if cve, ok := in["cve"].(map[string]interface{}); ok {
		return map[string]interface{}{
			kindKey: "CVE",
			"id":    s.id("cve"),
			"year":  cve["year"],
			"cveId": []map[string]interface{}{{"id": cve["cveId"]}},
		}, nil
	}
	if osv, ok := in["osv"].(map[string]interface{}); ok {
		return map[string]interface{}{
			kindKey: "OSV",
			"id":    s.id("osv"),
			"osvId": []map[string]interface{}{{"id": osv["osvId"]}},
		}, nil
	}
	if ghsa, ok := in["ghsa"].(map[string]interface{}); ok {
		return map[string]interface{}{
			kindKey:  "GHSA",
			"id":     s.id("ghsa"),
			"ghsaId": []map[string]interface{}{{"id": ghsa["ghsaId"]}},
		}, nil
	}
	if noVuln, ok := in["noVuln"].(bool); ok && noVuln {
		return map[string]interface{}{kindKey: "NoVuln", "id": s.id("novuln")}, nil
	}
	return nil, errors.New("noVuln must be true when set")
}

func (s *store) upsertPackage(in map[string]interface{}) map[string]interface{} {
	key := packageKey(in)
	if pkg, ok := s.packages[key]; ok {
		return pkg
	}

	qualifiers := []map[string]interface{}{}
	if qs, ok := in["qualifiers"].([]interface{}); ok {
		for _, q := range qs {
			qualifiers = append(qualifiers, q.(map[string]interface{}))
		}
	}

	pkg := map[string]interface{}{
		"id":   s.id("package"),
		"type": in["type"],
		"namespaces": []map[string]interface{}{{
			"id":        s.id("namespace"),
			"namespace": stringArg(in, "namespace"),
			"names": []map[string]interface{}{{
				"id":   s.id("name"),
				"name": in["name"],
				"versions": []map[string]interface{}{{
					"id":         s.id("version"),
					"version":    stringArg(in, "version"),
					"qualifiers": qualifiers,
					"subpath":    stringArg(in, "subpath"),
				}},
			}},
		}},
	}
	s.packages[key] = pkg
	return pkg
}

func (s *store) addRecord(pkg model.PackageNode, vuln model.Vulnerability, timeScanned string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	namespaces := []map[string]interface{}{}
	for _, ns := range pkg.Namespaces {
		names := []map[string]interface{}{}
		for _, n := range ns.Names {
			versions := []map[string]interface{}{}
			for _, v := range n.Versions {
				versions = append(versions, map[string]interface{}{
					"id": s.id("version"), "version": v.Version, "qualifiers": []map[string]interface{}{}, "subpath": v.Subpath,
				})
			}
			names = append(names, map[string]interface{}{"id": s.id("name"), "name": n.Name, "versions": versions})
		}
		namespaces = append(namespaces, map[string]interface{}{"id": s.id("namespace"), "namespace": ns.Namespace, "names": names})
	}

	var node map[string]interface{}
	switch v := vuln.(type) {
	case model.Cve:
		node = map[string]interface{}{kindKey: "CVE", "id": s.id("cve"), "year": v.Year, "cveId": []map[string]interface{}{{"id": v.CveID}}}
	case model.Osv:
		node = map[string]interface{}{kindKey: "OSV", "id": s.id("osv"), "osvId": []map[string]interface{}{{"id": v.OsvID}}}
	case model.Ghsa:
		node = map[string]interface{}{kindKey: "GHSA", "id": s.id("ghsa"), "ghsaId": []map[string]interface{}{{"id": v.GhsaID}}}
	default:
		node = map[string]interface{}{kindKey: "NoVuln", "id": s.id("novuln")}
	}

	rec := map[string]interface{}{
		"id":             s.id("certifyvuln"),
		"package":        map[string]interface{}{"id": s.id("package"), "type": pkg.Type, "namespaces": namespaces},
		"vulnerability":  node,
		"timeScanned":    timeScanned,
		"dbUri":          "",
		"dbVersion":      "",
		"scannerUri":     "",
		"scannerVersion": "",
		"origin":         "",
		"collector":      "",
	}
	s.records = append(s.records, rec)
	return rec["id"].(string)
}

func stringArg(in map[string]interface{}, key string) string {
	s, _ := in[key].(string)
	return s
}

func packageKey(in map[string]interface{}) string {
	parts := []string{stringArg(in, "type"), stringArg(in, "namespace"), stringArg(in, "name"), stringArg(in, "version"), stringArg(in, "subpath")}
	if qs, ok := in["qualifiers"].([]interface{}); ok {
		for _, q := range qs {
			qm := q.(map[string]interface{})
			parts = append(parts, stringArg(qm, "key")+"="+stringArg(qm, "value"))
		}
	}
	return strings.Join(parts, "|")
}
