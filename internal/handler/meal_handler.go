package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/service"
)

// MealHandler handles HTTP requests for the meal log
type MealHandler struct {
	mealService *service.MealService
	maxUploadMB int64
}

func NewMealHandler(mealService *service.MealService, maxUploadMB int64) *MealHandler {
	return &MealHandler{
		mealService: mealService,
		maxUploadMB: maxUploadMB,
	}
}

// AnalyzeMeal handles POST /v1/me/meals/analyze
func (h *MealHandler) AnalyzeMeal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid multipart form: "+err.Error())
	}

	files := form.File["image"]
	if len(files) == 0 {
		return fail(c, fiber.StatusBadRequest, "missing 'image' field in form data")
	}
	imageFile := files[0]

	maxBytes := h.maxUploadMB * 1024 * 1024
	if imageFile.Size > maxBytes {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("file size exceeds maximum of %dMB", h.maxUploadMB))
	}
	if !isValidImageType(imageFile) {
		return fail(c, fiber.StatusBadRequest, "invalid file type, only JPEG, PNG, WEBP and HEIC images are allowed")
	}

	fileHandle, err := imageFile.Open()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to open uploaded file")
	}
	defer fileHandle.Close()

	imageData, err := io.ReadAll(io.LimitReader(fileHandle, maxBytes))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to read uploaded file")
	}

	result, err := h.mealService.AnalyzePhoto(c.UserContext(), userID, imageData)
	if err != nil {
		return respondError(c, "Meals", err)
	}
	return ok(c, fiber.StatusOK, result)
}

// isValidImageType checks the declared content type, then the extension
func isValidImageType(file *multipart.FileHeader) bool {
	switch file.Header.Get("Content-Type") {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic", "image/heif":
		return true
	}

	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif":
		return true
	}
	return false
}

// CreateMeal handles POST /v1/me/meals
func (h *MealHandler) CreateMeal(c *fiber.Ctx) error {
	var in service.CreateMealInput
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	meal, err := h.mealService.CreateMeal(c.UserContext(), middleware.GetUserID(c), in)
	if err != nil {
		return respondError(c, "Meals", err)
	}
	return ok(c, fiber.StatusCreated, meal)
}

// ListMeals handles GET /v1/me/meals?date=YYYY-MM-DD
func (h *MealHandler) ListMeals(c *fiber.Ctx) error {
	meals, err := h.mealService.ListMeals(c.UserContext(), middleware.GetUserID(c), c.Query("date"))
	if err != nil {
		return respondError(c, "Meals", err)
	}
	return ok(c, fiber.StatusOK, meals)
}

// GetMeal handles GET /v1/me/meals/:id
func (h *MealHandler) GetMeal(c *fiber.Ctx) error {
	meal, err := h.mealService.GetMeal(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Meals", err)
	}
	return ok(c, fiber.StatusOK, meal)
}

// DeleteMeal handles DELETE /v1/me/meals/:id
func (h *MealHandler) DeleteMeal(c *fiber.Ctx) error {
	if err := h.mealService.DeleteMeal(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, "Meals", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "meal deleted",
	})
}
