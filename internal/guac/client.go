// Package guac is the client for the GUAC GraphQL query service. Every call
// is a single blocking round trip; failures are returned, never retried.
package guac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gofiber/fiber/v2"
	gqldoc "github.com/ortelius/guac-vex/graphql"
	"github.com/ortelius/guac-vex/graphql/modules/certifyvuln"
	"github.com/ortelius/guac-vex/graphql/modules/packages"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
	"go.uber.org/multierr"
)

var logger = util.InitLogger()

// QueryError wraps any failure talking to the query service
type QueryError struct {
	Operation string
	Cause     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("guac %s: %v", e.Operation, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Client talks to one GUAC GraphQL endpoint
type Client struct {
	endpoint string
	timeout  time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each request. A context deadline that is sooner wins.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient returns a client for endpoint, e.g. http://localhost:8080/query
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("guac endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("guac endpoint %q must be an http(s) URL", endpoint)
	}

	c := &Client{endpoint: endpoint}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the GraphQL URL the client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// IngestPackage ensures the package named by purl exists and returns its ID
func (c *Client) IngestPackage(ctx context.Context, purl string) (string, error) {
	pkg, err := packages.FromPURL(purl)
	if err != nil {
		return "", err
	}

	var resp packages.IngestPackageResponse
	if err := c.do(ctx, gqldoc.IngestPackage, map[string]interface{}{"pkg": pkg}, &resp); err != nil {
		return "", err
	}
	return resp.IngestPackage.ID, nil
}

// IngestCertifyVuln records that purl was scanned and found to have vuln.
// The package must have been ingested first.
func (c *Client) IngestCertifyVuln(ctx context.Context, purl string, vuln model.Vulnerability, meta model.VulnerabilityMetadata) (string, error) {
	pkg, err := packages.FromPURL(purl)
	if err != nil {
		return "", err
	}
	vulnInput, err := certifyvuln.MapVulnerability(vuln)
	if err != nil {
		return "", err
	}
	metaInput, err := certifyvuln.MapMetadata(meta)
	if err != nil {
		return "", err
	}

	vars := map[string]interface{}{
		"pkg":           pkg,
		"vulnerability": vulnInput,
		"certifyVuln":   metaInput,
	}

	var resp certifyvuln.IngestCertifyVulnResponse
	if err := c.do(ctx, gqldoc.IngestCertifyVuln, vars, &resp); err != nil {
		return "", err
	}
	return resp.IngestVulnerability.ID, nil
}

// FetchAllCertifyVuln returns every CertifyVuln record in service order
func (c *Client) FetchAllCertifyVuln(ctx context.Context) ([]model.CertifyVuln, error) {
	var resp certifyvuln.AllCertifyVulnResponse
	if err := c.do(ctx, gqldoc.AllCertifyVuln, nil, &resp); err != nil {
		return nil, err
	}

	results := make([]model.CertifyVuln, 0, len(resp.CertifyVuln))
	for _, node := range resp.CertifyVuln {
		rec, err := node.ToModel()
		if err != nil {
			return nil, &QueryError{Operation: gqldoc.AllCertifyVuln.OperationName, Cause: err}
		}
		results = append(results, rec)
	}
	return results, nil
}

// WaitReady polls the endpoint with exponential backoff until it answers or
// maxElapsed passes. It is a start-up probe only.
func (c *Client) WaitReady(ctx context.Context, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxElapsed

	return backoff.RetryNotify(func() error {
		return c.do(ctx, gqldoc.Ping, nil, nil)
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		logger.Sugar().Infof("GUAC at %s not ready, retrying in %s: %v", c.endpoint, next, err)
	})
}

type gqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (c *Client) do(ctx context.Context, doc gqldoc.Document, vars map[string]interface{}, out interface{}) error {
	op := doc.OperationName
	if err := ctx.Err(); err != nil {
		return &QueryError{Operation: op, Cause: err}
	}

	timeout, err := c.requestTimeout(ctx)
	if err != nil {
		return &QueryError{Operation: op, Cause: err}
	}

	agent := fiber.Post(c.endpoint)
	agent.JSON(gqlRequest{Query: doc.Query, OperationName: op, Variables: vars})
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	logger.Sugar().Debugf("GUAC %s -> %s", op, c.endpoint)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return &QueryError{Operation: op, Cause: multierr.Combine(errs...)}
	}
	if code < 200 || code > 299 {
		return &QueryError{Operation: op, Cause: fmt.Errorf("unexpected HTTP status %d: %s", code, truncate(body, 200))}
	}

	var resp gqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &QueryError{Operation: op, Cause: fmt.Errorf("decoding response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return &QueryError{Operation: op, Cause: errors.New(strings.Join(msgs, "; "))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &QueryError{Operation: op, Cause: fmt.Errorf("decoding data: %w", err)}
	}
	return nil
}

// requestTimeout returns the sooner of the client timeout and the context
// deadline, zero meaning unbounded. A deadline already passed is an error.
func (c *Client) requestTimeout(ctx context.Context) (time.Duration, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
