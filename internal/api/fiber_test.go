package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ortelius/guac-vex/graphql/guactest"
	"github.com/ortelius/guac-vex/internal/guac"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/restapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, opts ...vex.Option) (*guactest.Server, func(method, path, body string) (*http.Response, []byte)) {
	t.Helper()

	srv := guactest.NewServer(t)
	client, err := guac.NewClient(srv.URL, guac.WithTimeout(5*time.Second))
	require.NoError(t, err)

	app := NewFiberApp(client, opts...)

	do := func(method, path, body string) (*http.Response, []byte) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := app.Test(req, 10000)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, raw
	}
	return srv, do
}

func TestHealth(t *testing.T) {
	_, do := newTestApp(t)

	resp, body := do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestIngestThenVex(t *testing.T) {
	srv, do := newTestApp(t)
	purl := "pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0"

	resp, body := do(http.MethodPost, "/api/v1/packages", `{"purl":"`+purl+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(http.MethodPost, "/api/v1/certify-vuln", `{
		"purl": "`+purl+`",
		"vulnerability": {"type": "osv", "id": "GHSA-jfh8-c2jp-5v3q"},
		"metadata": {"db_uri": "https://osv.dev", "db_version": "1", "scanner_uri": "osv-scanner",
			"scanner_version": "1.9.2", "time_scanned": "2023-02-01T10:00:00Z", "collector": "api", "origin": "OSV"}
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var ingest struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &ingest))
	assert.True(t, ingest.Success)
	assert.NotEmpty(t, ingest.ID)

	srv.AddCertifyVuln(model.PackageNode{Type: "npm"}, model.Osv{OsvID: "OSV-X"}, "2023-02-01T10:00:00Z")

	resp, body = do(http.MethodGet, "/api/v1/vex", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "1", resp.Header.Get("X-Vex-Skipped"))

	var doc model.VexDocument
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, "GHSA-jfh8-c2jp-5v3q", doc.Statements[0].Vulnerability)
	assert.Equal(t, []string{"log4j-core"}, doc.Statements[0].Products)
}

func TestErrorStatuses(t *testing.T) {
	srv, do := newTestApp(t)

	resp, _ := do(http.MethodPost, "/api/v1/packages", `{"purl":"not-a-purl"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(http.MethodPost, "/api/v1/packages", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(http.MethodPost, "/api/v1/certify-vuln", `{"purl":"pkg:npm/a@1","vulnerability":{"type":"bogus"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(http.MethodPost, "/api/v1/certify-vuln", `{"purl":"pkg:npm/a@1","vulnerability":{"type":"none"}}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode, "package was never ingested")

	srv.Fail("down")
	resp, _ = do(http.MethodGet, "/api/v1/vex", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, restapi.StatusFor(io.EOF))
	assert.Equal(t, http.StatusBadGateway, restapi.StatusFor(&guac.QueryError{Operation: "x", Cause: io.EOF}))
}

var _ restapi.Service = (*guac.Client)(nil)
