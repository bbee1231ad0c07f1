package guactest

import (
	"github.com/graphql-go/graphql"
)

func idNodeFields() graphql.Fields {
	return graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	}
}

var packageQualifierType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PackageQualifier",
	Fields: graphql.Fields{
		"key":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"value": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var packageVersionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PackageVersion",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"version":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"qualifiers": &graphql.Field{Type: graphql.NewList(packageQualifierType)},
		"subpath":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var packageNameType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PackageName",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"versions": &graphql.Field{Type: graphql.NewList(packageVersionType)},
	},
})

var packageNamespaceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PackageNamespace",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"namespace": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"names":     &graphql.Field{Type: graphql.NewList(packageNameType)},
	},
})

var packageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Package",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"type":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"namespaces": &graphql.Field{Type: graphql.NewList(packageNamespaceType)},
	},
})

var cveType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CVE",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"year": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"cveId": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
			Name: "CVEId", Fields: idNodeFields(),
		}))},
	},
})

var osvType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OSV",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"osvId": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
			Name: "OSVId", Fields: idNodeFields(),
		}))},
	},
})

var ghsaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GHSA",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"ghsaId": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
			Name: "GHSAId", Fields: idNodeFields(),
		}))},
	},
})

var noVulnType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NoVuln",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
	},
})

var vulnerabilityUnion = graphql.NewUnion(graphql.UnionConfig{
	Name:  "Vulnerability",
	Types: []*graphql.Object{cveType, osvType, ghsaType, noVulnType},
	ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
		vuln, ok := p.Value.(map[string]interface{})
		if !ok {
			return nil
		}
		switch vuln[kindKey] {
		case "CVE":
			return cveType
		case "OSV":
			return osvType
		case "GHSA":
			return ghsaType
		default:
			return noVulnType
		}
	},
})

var certifyVulnType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CertifyVuln",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"package":        &graphql.Field{Type: graphql.NewNonNull(packageType)},
		"vulnerability":  &graphql.Field{Type: graphql.NewNonNull(vulnerabilityUnion)},
		"timeScanned":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"dbUri":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"dbVersion":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"scannerUri":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"scannerVersion": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"origin":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"collector":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var pkgInputSpec = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PkgInputSpec",
	Fields: graphql.InputObjectConfigFieldMap{
		"type":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"namespace": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"version":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"qualifiers": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "PackageQualifierInputSpec",
			Fields: graphql.InputObjectConfigFieldMap{
				"key":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
				"value": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			},
		})))},
		"subpath": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var vulnerabilityInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VulnerabilityInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"cve": &graphql.InputObjectFieldConfig{Type: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "CVEInputSpec",
			Fields: graphql.InputObjectConfigFieldMap{
				"cveId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
				"year":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
		})},
		"osv": &graphql.InputObjectFieldConfig{Type: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "OSVInputSpec",
			Fields: graphql.InputObjectConfigFieldMap{
				"osvId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			},
		})},
		"ghsa": &graphql.InputObjectFieldConfig{Type: graphql.NewInputObject(graphql.InputObjectConfig{
			Name: "GHSAInputSpec",
			Fields: graphql.InputObjectConfigFieldMap{
				"ghsaId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			},
		})},
		"noVuln": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var vulnerabilityMetaDataInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VulnerabilityMetaDataInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"dbUri":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"dbVersion":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"scannerUri":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"scannerVersion": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"timeScanned":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"collector":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"origin":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var certifyVulnSpec = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CertifyVulnSpec",
	Fields: graphql.InputObjectConfigFieldMap{
		"id": &graphql.InputObjectFieldConfig{Type: graphql.ID},
	},
})
