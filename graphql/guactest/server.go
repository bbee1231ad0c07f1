// Package guactest runs an in-memory GraphQL service shaped like GUAC's
// CertifyVuln API. It is meant for tests of code that talks to GUAC.
package guactest

import (
	"context"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/guac-vex/model"
)

// Server is a running fake GUAC endpoint
type Server struct {
	// URL is the GraphQL endpoint, e.g. http://127.0.0.1:41234/query
	URL string

	app   *fiber.App
	store *store
}

// NewServer starts a server on a loopback port and registers its shutdown
// with t.Cleanup
func NewServer(t testing.TB) *Server {
	t.Helper()

	st := newStore()
	schema, err := st.createSchema()
	if err != nil {
		t.Fatalf("Failed to create GraphQL schema: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/query", graphQLHandler(schema, st))

	go func() {
		_ = app.Listener(ln)
	}()

	srv := &Server{
		URL:   "http://" + ln.Addr().String() + "/query",
		app:   app,
		store: st,
	}
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return srv
}

// graphQLHandler returns a Fiber handler for GraphQL requests
func graphQLHandler(schema graphql.Schema, st *store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params struct {
			Query         string                 `json:"query"`
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}

		if err := c.BodyParser(&params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []map[string]interface{}{{"message": "Invalid request body"}},
			})
		}

		st.mu.Lock()
		st.requests++
		st.mu.Unlock()

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  params.Query,
			VariableValues: params.Variables,
			OperationName:  params.OperationName,
			Context:        context.Background(),
		})

		return c.JSON(result)
	}
}

// AddCertifyVuln stores a record directly, bypassing input validation, so
// tests can seed malformed timestamps or empty package tries
func (s *Server) AddCertifyVuln(pkg model.PackageNode, vuln model.Vulnerability, timeScanned string) string {
	return s.store.addRecord(pkg, vuln, timeScanned)
}

// Fail makes every resolver return message as a GraphQL error; "" restores
// normal behaviour
func (s *Server) Fail(message string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.failure = message
}

// Requests returns how many GraphQL requests have been served
func (s *Server) Requests() int {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.requests
}

// RecordCount returns the number of stored CertifyVuln records
func (s *Server) RecordCount() int {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return len(s.store.records)
}
