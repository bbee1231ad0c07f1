package certifyvuln

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
)

var logger = util.InitLogger()

// Ingester writes packages and certifications to GUAC
type Ingester interface {
	IngestPackage(ctx context.Context, purl string) (string, error)
	IngestCertifyVuln(ctx context.Context, purl string, vuln model.Vulnerability, meta model.VulnerabilityMetadata) (string, error)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// PostPackage ingests one package
func PostPackage(ingester Ingester, onError func(*fiber.Ctx, error) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PackageRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
		if req.Purl == "" {
			return badRequest(c, "purl is required")
		}

		id, err := ingester.IngestPackage(c.UserContext(), req.Purl)
		if err != nil {
			logger.Sugar().Errorf("Failed to ingest package %s: %v", req.Purl, err)
			return onError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(IngestResponse{Success: true, ID: id})
	}
}

// PostCertifyVuln ingests a certification for an already ingested package.
// A missing time_scanned defaults to now.
func PostCertifyVuln(ingester Ingester, onError func(*fiber.Ctx, error) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CertifyVulnRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
		if req.Purl == "" {
			return badRequest(c, "purl is required")
		}

		vuln, err := req.Vulnerability.ToModel()
		if err != nil {
			return badRequest(c, err.Error())
		}
		if req.Metadata.TimeScanned.IsZero() {
			req.Metadata.TimeScanned = time.Now().UTC()
		}

		id, err := ingester.IngestCertifyVuln(c.UserContext(), req.Purl, vuln, req.Metadata)
		if err != nil {
			logger.Sugar().Errorf("Failed to ingest certification for %s: %v", req.Purl, err)
			return onError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(IngestResponse{Success: true, ID: id})
	}
}
