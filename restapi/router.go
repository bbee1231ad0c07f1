// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/ortelius/guac-vex/restapi/modules/certifyvuln"
	vexapi "github.com/ortelius/guac-vex/restapi/modules/vex"
)

// Service is the GUAC client surface the REST API needs
type Service interface {
	vexapi.Fetcher
	certifyvuln.Ingester
}

// SetupRoutes configures all REST API routes
func SetupRoutes(app *fiber.App, svc Service, vexOpts []vex.Option) {
	api := app.Group("/api/v1")

	api.Get("/vex", vexapi.GetVex(svc, ErrorResponse, vexOpts...))
	api.Post("/packages", certifyvuln.PostPackage(svc, ErrorResponse))
	api.Post("/certify-vuln", certifyvuln.PostCertifyVuln(svc, ErrorResponse))
}
