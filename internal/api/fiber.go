// Package api wires the Fiber application serving the REST API.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/ortelius/guac-vex/restapi"
)

// NewFiberApp creates and configures a Fiber app with the REST routes
func NewFiberApp(svc restapi.Service, vexOpts ...vex.Option) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "guac-vex API v1.0",
		ReadTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(fiberrecover.New())
	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	restapi.SetupRoutes(app, svc, vexOpts)

	return app
}
