package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/service"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged under component and hidden from the client.
func respondError(c *fiber.Ctx, component string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrProfileRequired):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":          false,
			"error":            err.Error(),
			"needs_onboarding": true,
		})
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrInvalidSignature):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailLinked):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanInactive):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	log.Printf("[%s] %v", component, err)
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
