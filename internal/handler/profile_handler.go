package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/service"
)

// ProfileHandler serves onboarding, settings and the target calculator
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile handles GET /v1/me/profile
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profileService.GetProfile(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, "Profile", err)
	}
	return ok(c, fiber.StatusOK, profile)
}

// SaveProfile handles PUT /v1/me/profile
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.profileService.SaveProfile(c.UserContext(), middleware.GetUserID(c), in)
	if err != nil {
		return respondError(c, "Profile", err)
	}
	return ok(c, fiber.StatusOK, profile)
}

// Energy handles GET /v1/me/profile/energy
func (h *ProfileHandler) Energy(c *fiber.Ctx) error {
	energy, err := h.profileService.Energy(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, "Profile", err)
	}
	return ok(c, fiber.StatusOK, energy)
}

// PreviewTargets handles POST /v1/targets/preview
func (h *ProfileHandler) PreviewTargets(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	targets, err := h.profileService.PreviewTargets(in)
	if err != nil {
		return respondError(c, "Profile", err)
	}
	return ok(c, fiber.StatusOK, targets)
}
