package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ortelius/guac-vex/graphql/guactest"
	"github.com/ortelius/guac-vex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const log4j = "pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRequiresEndpoint(t *testing.T) {
	t.Setenv("GUAC_VEX_ENDPOINT", "")
	_, _, err := run(t, "vex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
}

func TestIngestAndVex(t *testing.T) {
	srv := guactest.NewServer(t)

	out, _, err := run(t, "ingest-package", "--endpoint", srv.URL, log4j)
	require.NoError(t, err)
	assert.Contains(t, out, log4j)

	_, _, err = run(t, "ingest-vuln", "--endpoint", srv.URL, log4j,
		"--type", "cve", "--id", "CVE-2021-44228", "--year", "2021",
		"--time-scanned", "2023-02-01T10:00:00Z")
	require.NoError(t, err)

	out, _, err = run(t, "vex", "--endpoint", srv.URL)
	require.NoError(t, err)

	var doc model.VexDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, "NOT_SET", doc.Statements[0].Vulnerability)

	out, _, err = run(t, "vex", "--endpoint", srv.URL, "--resolve-all-ids")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "CVE-2021-44228", doc.Statements[0].Vulnerability)

	out, _, err = run(t, "vex", "--endpoint", srv.URL, "-o", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "metadata:"), out)
}

func TestVexReportsSkips(t *testing.T) {
	srv := guactest.NewServer(t)
	srv.AddCertifyVuln(model.PackageNode{
		Type:       "npm",
		Namespaces: []model.PackageNamespace{{Names: []model.PackageName{{Name: "lodash"}}}},
	}, model.Osv{OsvID: "OSV-1"}, "not a time")

	out, errOut, err := run(t, "vex", "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, errOut, "skipped 1 of 1 records")

	var doc model.VexDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Statements)
}

func TestIngestVulnRejectsBadInput(t *testing.T) {
	srv := guactest.NewServer(t)

	_, _, err := run(t, "ingest-vuln", "--endpoint", srv.URL, log4j, "--type", "bogus")
	assert.Error(t, err)

	_, _, err = run(t, "ingest-vuln", "--endpoint", srv.URL, log4j, "--type", "none", "--time-scanned", "yesterday")
	assert.Error(t, err)

	assert.Zero(t, srv.Requests())
}

func TestIngestOSV(t *testing.T) {
	srv := guactest.NewServer(t)

	file := filepath.Join(t.TempDir(), "osv.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"id": "GHSA-jfh8-c2jp-5v3q",
		"modified": "2023-01-01T00:00:00Z",
		"affected": [{
			"package": {"ecosystem": "Maven", "name": "org.apache.logging.log4j:log4j-core"},
			"ranges": [{"type": "ECOSYSTEM", "events": [{"introduced": "2.0.0"}, {"fixed": "2.15.0"}]}]
		}]
	}`), 0o600))

	out, _, err := run(t, "ingest-osv", "--endpoint", srv.URL, "-f", file, log4j,
		"pkg:maven/org.apache.logging.log4j/log4j-core@2.17.1")
	require.NoError(t, err)
	assert.Contains(t, out, "affected=true\t"+log4j)
	assert.Contains(t, out, "affected=false\tpkg:maven/org.apache.logging.log4j/log4j-core@2.17.1")
	assert.Equal(t, 2, srv.RecordCount())
}

func TestConfigFile(t *testing.T) {
	srv := guactest.NewServer(t)

	cfgFile := filepath.Join(t.TempDir(), "guac-vex.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("endpoint: "+srv.URL+"\noutput: yaml\n"), 0o600))

	out, _, err := run(t, "vex", "--config", cfgFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "metadata:"), out)
}
