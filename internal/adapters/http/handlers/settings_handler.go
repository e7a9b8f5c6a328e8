package handlers

import (
	"errors"

	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/response"
	"ambika-sandledger/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles the sand rate endpoints
type SettingsHandler struct {
	settingsService *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateRateRequest represents the master's rate update body
type UpdateRateRequest struct {
	NewRate float64 `json:"newRate" validate:"required,gt=0"`
}

// GetSandRate returns the current rate
// @Summary Get sand rate
// @Tags Settings
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 404 {object} fiber.Map
// @Router /api/settings/sandRate [get]
func (h *SettingsHandler) GetSandRate(c *fiber.Ctx) error {
	rate, err := h.settingsService.GetSandRate(c.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRateNotSet) {
			return response.NotFound(c, "Sand rate setting not found.")
		}
		return response.InternalServerError(c, "Failed to retrieve rate.")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sandRate": rate})
}

// UpdateSandRate upserts the rate (master only)
// @Summary Update sand rate
// @Tags Settings
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Router /api/settings/sandRate [put]
func (h *SettingsHandler) UpdateSandRate(c *fiber.Ctx) error {
	var req UpdateRateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "Invalid rate provided. Must be a positive number.")
	}

	if err := h.settingsService.SetSandRate(c.Context(), req.NewRate); err != nil {
		if errors.Is(err, domain.ErrInvalidRate) {
			return response.BadRequest(c, "Invalid rate provided. Must be a positive number.")
		}
		return response.InternalServerError(c, "Failed to update rate.")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Sand rate updated successfully.",
		"newRate": req.NewRate,
	})
}
