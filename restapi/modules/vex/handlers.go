// Package vex serves assembled OpenVEX documents.
package vex

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/util"
)

var logger = util.InitLogger()

// Fetcher retrieves CertifyVuln records
type Fetcher interface {
	FetchAllCertifyVuln(ctx context.Context) ([]model.CertifyVuln, error)
}

// GetVex fetches every CertifyVuln record and returns the VEX document.
// The number of skipped records is reported in the X-Vex-Skipped header.
func GetVex(fetcher Fetcher, onError func(*fiber.Ctx, error) error, opts ...vex.Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := fetcher.FetchAllCertifyVuln(c.UserContext())
		if err != nil {
			logger.Sugar().Errorf("Failed to fetch CertifyVuln records: %v", err)
			return onError(c, err)
		}

		doc, report := vex.Assemble(results, opts...)
		if report.Err != nil {
			logger.Sugar().Warnf("Skipped %d of %d records: %v", report.Skipped, len(results), report.Err)
		}

		c.Set("X-Vex-Skipped", strconv.Itoa(report.Skipped))
		return c.JSON(doc)
	}
}
