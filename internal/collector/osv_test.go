package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ortelius/guac-vex/graphql/guactest"
	"github.com/ortelius/guac-vex/internal/guac"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const log4shell = `{
  "id": "GHSA-jfh8-c2jp-5v3q",
  "modified": "2023-01-01T00:00:00Z",
  "aliases": ["CVE-2021-44228"],
  "affected": [{
    "package": {"ecosystem": "Maven", "name": "org.apache.logging.log4j:log4j-core"},
    "ranges": [{
      "type": "ECOSYSTEM",
      "events": [{"introduced": "2.0.0"}, {"fixed": "2.15.0"}]
    }]
  }]
}`

func meta() model.VulnerabilityMetadata {
	return model.VulnerabilityMetadata{
		DBURI:          "https://osv.dev",
		DBVersion:      "1.0",
		ScannerURI:     "collectorist-osv",
		ScannerVersion: "1.0",
		TimeScanned:    time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		Origin:         "OSV",
		Collector:      "collectorist-osv",
	}
}

func TestReadOSV(t *testing.T) {
	record, err := ReadOSV(strings.NewReader(log4shell))
	require.NoError(t, err)
	assert.Equal(t, "GHSA-jfh8-c2jp-5v3q", record.ID)
	require.Len(t, record.Affected, 1)

	_, err = ReadOSV(strings.NewReader(`{"summary":"no id"}`))
	assert.Error(t, err)

	_, err = ReadOSV(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestCollectOSV(t *testing.T) {
	srv := guactest.NewServer(t)
	client, err := guac.NewClient(srv.URL)
	require.NoError(t, err)

	record, err := ReadOSV(strings.NewReader(log4shell))
	require.NoError(t, err)

	purls := []string{
		"pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0",
		"pkg:maven/org.apache.logging.log4j/log4j-core@2.17.1",
		"pkg:maven/org.apache.logging.log4j/log4j-api@2.13.0",
		"pkg:maven/org.apache.logging.log4j/log4j-core",
	}

	results, err := CollectOSV(context.Background(), client, record, purls, meta())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Affected)
	assert.False(t, results[1].Affected)
	assert.False(t, results[2].Affected, "different package")
	assert.False(t, results[3].Affected, "no version to compare")

	fetched, err := client.FetchAllCertifyVuln(context.Background())
	require.NoError(t, err)
	require.Len(t, fetched, 4)
	assert.Equal(t, model.Osv{OsvID: "GHSA-jfh8-c2jp-5v3q"}, fetched[0].Vulnerability)
	assert.Equal(t, model.NoVuln{}, fetched[1].Vulnerability)
}

type failingIngester struct {
	calls int
}

func (f *failingIngester) IngestPackage(context.Context, string) (string, error) {
	f.calls++
	return "", errors.New("service down")
}

func (f *failingIngester) IngestCertifyVuln(context.Context, string, model.Vulnerability, model.VulnerabilityMetadata) (string, error) {
	f.calls++
	return "", nil
}

func TestCollectOSV_StopsOnFirstError(t *testing.T) {
	record, err := ReadOSV(strings.NewReader(log4shell))
	require.NoError(t, err)

	ing := &failingIngester{}
	results, err := CollectOSV(context.Background(), ing, record, []string{
		"pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0",
		"pkg:maven/org.apache.logging.log4j/log4j-core@2.14.0",
	}, meta())

	assert.EqualError(t, err, "service down")
	assert.Empty(t, results)
	assert.Equal(t, 1, ing.calls)
}

func TestCollectOSV_InvalidPurl(t *testing.T) {
	record, err := ReadOSV(strings.NewReader(log4shell))
	require.NoError(t, err)

	ing := &failingIngester{}
	_, err = CollectOSV(context.Background(), ing, record, []string{"not-a-purl"}, meta())

	var perr *util.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Zero(t, ing.calls)
}

var _ Ingester = (*guac.Client)(nil)
