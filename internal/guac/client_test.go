package guac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ortelius/guac-vex/graphql/guactest"
	"github.com/ortelius/guac-vex/graphql/modules/certifyvuln"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const log4j = "pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0"

func testMetadata() model.VulnerabilityMetadata {
	return model.VulnerabilityMetadata{
		DBURI:          "http://db.example.com/",
		DBVersion:      "1.0",
		ScannerURI:     "collectorist-osv",
		ScannerVersion: "1.0",
		TimeScanned:    time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC),
		Origin:         "OSV",
		Collector:      "collectorist-osv",
	}
}

func newTestClient(t *testing.T) (*Client, *guactest.Server) {
	t.Helper()
	srv := guactest.NewServer(t)
	client, err := NewClient(srv.URL, WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("localhost:8080/query")
	assert.Error(t, err)

	c, err := NewClient(" http://localhost:8080/query ")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/query", c.Endpoint())
}

func TestIngestAndFetch(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	pkgID, err := client.IngestPackage(ctx, log4j)
	require.NoError(t, err)
	assert.NotEmpty(t, pkgID)

	again, err := client.IngestPackage(ctx, log4j)
	require.NoError(t, err)
	assert.Equal(t, pkgID, again, "ingesting the same package twice returns the same node")

	vulns := []model.Vulnerability{
		model.Ghsa{GhsaID: "ghsa-taco-vuln"},
		model.Osv{OsvID: "GHSA-jfh8-c2jp-5v3q"},
		model.Cve{CveID: "CVE-2021-44228", Year: 2021},
		model.NoVuln{},
	}
	for _, v := range vulns {
		id, err := client.IngestCertifyVuln(ctx, log4j, v, testMetadata())
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}
	assert.Equal(t, 4, srv.RecordCount())

	results, err := client.FetchAllCertifyVuln(ctx)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, rec := range results {
		assert.Equal(t, vulns[i], rec.Vulnerability)
		assert.Equal(t, "2023-02-01T10:00:00Z", rec.TimeScanned)
		assert.Equal(t, "collectorist-osv", rec.Collector)
		assert.Equal(t, "maven", rec.Package.Type)
		require.Len(t, rec.Package.Namespaces, 1)
		assert.Equal(t, "org.apache.logging.log4j", rec.Package.Namespaces[0].Namespace)
		assert.Equal(t, "log4j-core", rec.Package.Namespaces[0].Names[0].Name)
		assert.Equal(t, "2.13.0", rec.Package.Namespaces[0].Names[0].Versions[0].Version)
	}
}

func TestIngestCertifyVuln_UnknownPackage(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.IngestCertifyVuln(context.Background(), "pkg:npm/left-pad@1.0.0", model.NoVuln{}, testMetadata())
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "IngestCertifyVuln", qerr.Operation)
	assert.Contains(t, qerr.Error(), "has not been ingested")
}

func TestIngest_InvalidInputsNeverReachTheService(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	_, err := client.IngestPackage(ctx, "not-a-purl")
	var perr *util.ParseError
	assert.True(t, errors.As(err, &perr))

	_, err = client.IngestCertifyVuln(ctx, log4j, nil, testMetadata())
	var merr *certifyvuln.MappingError
	assert.True(t, errors.As(err, &merr))

	assert.Equal(t, 0, srv.Requests())
}

func TestQueryErrors(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Fail("backend unavailable")

	_, err := client.FetchAllCertifyVuln(context.Background())
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "AllCertifyVuln", qerr.Operation)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestQueryErrors_HTTPStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL)
	require.NoError(t, err)

	_, err = client.FetchAllCertifyVuln(context.Background())
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Contains(t, err.Error(), "500")
}

func TestQueryErrors_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := NewClient(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.IngestPackage(context.Background(), log4j)
	var qerr *QueryError
	assert.True(t, errors.As(err, &qerr))
}

func TestQueryErrors_CancelledContext(t *testing.T) {
	client, srv := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchAllCertifyVuln(ctx)
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.Requests())
}

// lapsedContext reports a deadline in the past while Err is still nil, the
// state between a deadline passing and the context noticing it.
type lapsedContext struct {
	context.Context
}

func (lapsedContext) Deadline() (time.Time, bool) {
	return time.Now().Add(-time.Millisecond), true
}

func TestQueryErrors_DeadlinePassedBeforeSend(t *testing.T) {
	client, srv := newTestClient(t)

	_, err := client.FetchAllCertifyVuln(lapsedContext{context.Background()})
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, srv.Requests())
}

func TestRequestTimeout(t *testing.T) {
	c := &Client{timeout: 10 * time.Second}

	timeout, err := c.requestTimeout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	timeout, err = c.requestTimeout(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, timeout, time.Second)
	assert.Greater(t, timeout, time.Duration(0))

	timeout, err = (&Client{}).requestTimeout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), timeout)

	_, err = c.requestTimeout(lapsedContext{context.Background()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitReady(t *testing.T) {
	client, srv := newTestClient(t)

	require.NoError(t, client.WaitReady(context.Background(), 5*time.Second))
	assert.GreaterOrEqual(t, srv.Requests(), 1)
}

func TestWaitReady_GivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL)
	require.NoError(t, err)

	assert.Error(t, client.WaitReady(context.Background(), 300*time.Millisecond))
}
