package handlers

import (
	"errors"
	"strconv"

	"ambika-sandledger/internal/adapters/http/middleware"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/response"
	"ambika-sandledger/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles self-service account endpoints and master-only
// account administration.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest represents profile update request body.
// Both fields are optional; an omitted field clears the stored value
// (unconditional overwrite).
type UpdateProfileRequest struct {
	FullName      *string `json:"fullName" validate:"omitempty,max=100"`
	ContactNumber *string `json:"contactNumber" validate:"omitempty,max=30"`
}

// ChangePasswordRequest represents own-password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// ChangeUsernameRequest represents own-username change request body
type ChangeUsernameRequest struct {
	NewUsername     string `json:"newUsername" validate:"required,max=50"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

// AddUserRequest represents the master's add-driver request body
type AddUserRequest struct {
	Username      string  `json:"username" validate:"required,max=50"`
	Password      string  `json:"password" validate:"required"`
	FullName      *string `json:"fullName" validate:"omitempty,max=100"`
	ContactNumber *string `json:"contactNumber" validate:"omitempty,max=30"`
}

// ResetPasswordRequest represents the master's password reset body
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

// RenameUserRequest represents the master's rename body
type RenameUserRequest struct {
	NewUsername string `json:"newUsername" validate:"required,max=50"`
}

// ============================================================
// Self-service endpoints
// ============================================================

// UpdateProfile overwrites the caller's profile fields
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 404 {object} fiber.Map
// @Router /api/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Context(), identity.UserID, req.FullName, req.ContactNumber)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found.")
		}
		return response.InternalServerError(c, "Failed to update profile.")
	}

	identity.FullName = user.FullName
	identity.ContactNumber = user.ContactNumber
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully.",
		"user":    identity,
	})
}

// ChangePassword replaces the caller's own password
// @Summary Change own password
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 401 {object} fiber.Map
// @Router /api/profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "All password fields are required.")
	}
	if req.NewPassword != req.ConfirmPassword {
		return response.BadRequest(c, "New passwords do not match.")
	}

	err := h.userService.ChangeOwnPassword(c.Context(), identity.UserID,
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Incorrect current password.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "New password must be at least 4 characters long.")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found.")
		default:
			return response.InternalServerError(c, "Failed to update password.")
		}
	}

	return response.OK(c, "Password updated successfully.")
}

// ChangeUsername renames the caller and updates the live session view
// @Summary Change own username
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 401 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /api/profile/username [put]
func (h *UserHandler) ChangeUsername(c *fiber.Ctx) error {
	identity := middleware.Identity(c)

	var req ChangeUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "New username and current password are required.")
	}

	user, err := h.userService.ChangeOwnUsername(c.Context(), identity.UserID, req.NewUsername, req.CurrentPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservedUsername):
			return response.BadRequest(c, `Cannot change username to "master".`)
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "New username is already taken.")
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Incorrect current password.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "New username cannot be the same as the current username.")
		case errors.Is(err, domain.ErrMasterImmutable):
			return response.Forbidden(c, "Master account cannot be renamed.")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "Current user not found.")
		default:
			return response.InternalServerError(c, "Failed to update username.")
		}
	}

	identity.Username = user.Username
	identity.IsMaster = user.IsMaster()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Username updated successfully.",
		"user":    identity,
	})
}

// ============================================================
// Master-only administration endpoints
// ============================================================

// ListUsers lists every driver account, username ascending
// @Summary List drivers
// @Tags Users
// @Produce json
// @Success 200 {array} models.UserResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListDrivers(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve users.")
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// AddUser creates a driver account on the master's behalf
// @Summary Add driver
// @Tags Users
// @Accept json
// @Produce json
// @Success 201 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /api/users [post]
func (h *UserHandler) AddUser(c *fiber.Ctx) error {
	var req AddUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "Username and password are required.")
	}

	user, err := h.userService.AddDriver(c.Context(), &services.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservedUsername):
			return response.BadRequest(c, "Cannot add another master user.")
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "Username and password are required.")
		default:
			return response.InternalServerError(c, "Failed to add user.")
		}
	}

	return response.Created(c, "Driver added successfully.", fiber.Map{
		"newUser": user.ToResponse(),
	})
}

// DeleteUser removes a driver with zero ledger entries
// @Summary Delete driver
// @Tags Users
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 404 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID.")
	}

	if err := h.userService.DeleteDriver(c.Context(), targetID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserHasLedger):
			return response.Conflict(c, "Cannot delete user with existing transactions.")
		case errors.Is(err, domain.ErrMasterImmutable):
			return response.Forbidden(c, "Master account cannot be deleted.")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or cannot be deleted.")
		default:
			return response.InternalServerError(c, "Failed to delete user.")
		}
	}

	return response.OK(c, "User deleted successfully.")
}

// ResetPassword sets a driver's password (master override)
// @Summary Reset driver password
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 404 {object} fiber.Map
// @Router /api/users/{id}/password [put]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID.")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "New password is required.")
	}

	if err := h.userService.ResetPassword(c.Context(), targetID, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "New password must be at least 4 characters long.")
		case errors.Is(err, domain.ErrMasterImmutable):
			return response.NotFound(c, "User not found or cannot be updated.")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or cannot be updated.")
		default:
			return response.InternalServerError(c, "Failed to update password.")
		}
	}

	return response.OK(c, "User password updated successfully.")
}

// RenameUser changes a driver's username (master override)
// @Summary Rename driver
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 404 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /api/users/{id}/username [put]
func (h *UserHandler) RenameUser(c *fiber.Ctx) error {
	targetID, err := parseUserID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID.")
	}

	var req RenameUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "New username is required.")
	}

	if err := h.userService.RenameDriver(c.Context(), targetID, req.NewUsername); err != nil {
		switch {
		case errors.Is(err, domain.ErrReservedUsername):
			return response.BadRequest(c, `Cannot change username to "master".`)
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "New username is already taken.")
		case errors.Is(err, domain.ErrMasterImmutable):
			return response.NotFound(c, "User not found or cannot be updated.")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or cannot be updated.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "New username is required.")
		default:
			return response.InternalServerError(c, "Failed to update username.")
		}
	}

	return response.OK(c, "Username updated successfully.")
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
