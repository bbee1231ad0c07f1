package restapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/guac-vex/graphql/modules/certifyvuln"
	"github.com/ortelius/guac-vex/internal/guac"
	"github.com/ortelius/guac-vex/util"
)

// StatusFor maps the error taxonomy onto HTTP status codes
func StatusFor(err error) int {
	var parseErr *util.ParseError
	var mappingErr *certifyvuln.MappingError
	var queryErr *guac.QueryError

	switch {
	case errors.As(err, &parseErr), errors.As(err, &mappingErr):
		return fiber.StatusBadRequest
	case errors.As(err, &queryErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes err with the status StatusFor picks
func ErrorResponse(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
