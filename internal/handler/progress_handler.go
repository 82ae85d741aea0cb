package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/nutrition"
	"github.com/mansoorceksport/platepal/internal/service"
)

// ProgressHandler serves the day, week and month rollups
type ProgressHandler struct {
	progressService *service.ProgressService
	now             func() time.Time
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		now:             time.Now,
	}
}

// Day handles GET /v1/me/progress/day?date=YYYY-MM-DD
func (h *ProgressHandler) Day(c *fiber.Ctx) error {
	day, err := h.anchor(c.Query("date"))
	if err != nil {
		return respondError(c, "Progress", err)
	}

	result, err := h.progressService.Day(c.UserContext(), middleware.GetUserID(c), day)
	if err != nil {
		return respondError(c, "Progress", err)
	}
	return ok(c, fiber.StatusOK, result)
}

// Week handles GET /v1/me/progress/week?date=YYYY-MM-DD. Any day of the
// week selects it.
func (h *ProgressHandler) Week(c *fiber.Ctx) error {
	anchor, err := h.anchor(c.Query("date"))
	if err != nil {
		return respondError(c, "Progress", err)
	}

	result, err := h.progressService.Week(c.UserContext(), middleware.GetUserID(c), anchor)
	if err != nil {
		return respondError(c, "Progress", err)
	}
	return ok(c, fiber.StatusOK, result)
}

// Month handles GET /v1/me/progress/month?year=2025&month=6
func (h *ProgressHandler) Month(c *fiber.Ctx) error {
	now := h.now().In(h.progressService.Location())
	year, month := now.Year(), now.Month()

	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			return fail(c, fiber.StatusBadRequest, "year must be a four-digit number")
		}
		year = y
	}
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return fail(c, fiber.StatusBadRequest, "month must be between 1 and 12")
		}
		month = time.Month(m)
	}

	result, err := h.progressService.Month(c.UserContext(), middleware.GetUserID(c), year, month)
	if err != nil {
		return respondError(c, "Progress", err)
	}
	return ok(c, fiber.StatusOK, result)
}

// anchor parses an optional day key, defaulting to today
func (h *ProgressHandler) anchor(raw string) (time.Time, error) {
	loc := h.progressService.Location()
	if raw == "" {
		return nutrition.StartOfDay(h.now().In(loc)), nil
	}
	day, err := nutrition.ParseDay(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	return day, nil
}
