package middleware

import (
	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/core/services"
	"ambika-sandledger/internal/pkg/logger"
	"ambika-sandledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the HTTP-only cookie carrying the opaque
// session token. The token never appears in a URL or response body.
const SessionCookie = "session_token"

const identityKey = "identity"

// SessionMiddleware resolves the session cookie into an identity and
// stores it in the request locals. Resolution re-fetches the user row
// so renames and profile edits are reflected immediately; an expired or
// orphaned session is treated as anonymous.
func SessionMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		identity, err := authService.Resolve(c.Context(), token)
		if err != nil {
			logger.Get().Error().Err(err).Msg("session resolve failed")
			return response.InternalServerError(c, "Server error.")
		}
		if identity != nil {
			c.Locals(identityKey, identity)
		}
		return c.Next()
	}
}

// Identity returns the authenticated identity for this request, or nil
func Identity(c *fiber.Ctx) *models.SessionIdentity {
	identity, _ := c.Locals(identityKey).(*models.SessionIdentity)
	return identity
}

// RequireLogin rejects anonymous requests with 401
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Identity(c) == nil {
			return response.Unauthorized(c, "Authentication required. Please login.")
		}
		return c.Next()
	}
}

// RequireMaster rejects non-master requests with 403. Implies
// RequireLogin: an anonymous caller still gets 401.
func RequireMaster() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := Identity(c)
		if identity == nil {
			return response.Unauthorized(c, "Authentication required. Please login.")
		}
		if !identity.IsMaster {
			return response.Forbidden(c, "Forbidden: Master access required.")
		}
		return c.Next()
	}
}
