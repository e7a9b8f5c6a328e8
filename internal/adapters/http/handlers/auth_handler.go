package handlers

import (
	"errors"
	"time"

	"ambika-sandledger/internal/adapters/http/middleware"
	"ambika-sandledger/internal/config"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/response"
	"ambika-sandledger/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username      string  `json:"username" validate:"required,max=50"`
	Password      string  `json:"password" validate:"required"`
	FullName      *string `json:"fullName" validate:"omitempty,max=100"`
	ContactNumber *string `json:"contactNumber" validate:"omitempty,max=30"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles new driver self-registration
// @Summary Register new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 409 {object} fiber.Map
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "Username and password are required.")
	}

	input := &services.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
	}
	if _, err := h.authService.Register(c.Context(), input); err != nil {
		switch {
		case errors.Is(err, domain.ErrReservedUsername):
			return response.BadRequest(c, "Cannot register with this username.")
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "Username and password are required.")
		default:
			return response.InternalServerError(c, "Failed to register user.")
		}
	}

	return response.Message(c, fiber.StatusCreated, "User registered successfully. Please login.")
}

// Login authenticates a user and issues a session cookie
// @Summary Login user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Failure 401 {object} fiber.Map
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if err := validation.Struct(&req); err != nil {
		return response.BadRequest(c, "Username and password are required.")
	}

	token, _, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password.")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, "Username and password are required.")
		default:
			return response.InternalServerError(c, "Failed to login.")
		}
	}

	h.setSessionCookie(c, token)
	return response.OK(c, "Login successful.")
}

// Logout destroys the session and clears the cookie
// @Summary Logout user
// @Tags Auth
// @Produce json
// @Success 200 {object} fiber.Map
// @Failure 400 {object} fiber.Map
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if middleware.Identity(c) == nil {
		return response.BadRequest(c, "Not logged in.")
	}

	token := c.Cookies(middleware.SessionCookie)
	if err := h.authService.Logout(c.Context(), token); err != nil {
		return response.InternalServerError(c, "Could not log out.")
	}

	h.clearSessionCookie(c)
	return response.OK(c, "Logout successful.")
}

// GetCurrentUser returns the refreshed session identity, or
// {user: null} with 401 when anonymous.
// @Summary Get current session user
// @Tags Auth
// @Produce json
// @Success 200 {object} fiber.Map
// @Router /api/user [get]
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	identity := middleware.Identity(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"user": nil})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": identity})
}

// setSessionCookie attaches the opaque token as a same-site,
// HTTP-only cookie with the session's absolute lifetime.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		MaxAge:   int(h.cfg.Session.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cfg.Cookie.Secure,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.Cookie.Secure,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
		Path:     "/",
	})
}
