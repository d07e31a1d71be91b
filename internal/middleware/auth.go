package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userContextKey = "currentUserID"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
}

// AuthMiddleware validates bearer tokens and loads the authenticated user ID
// into context. Verification errors are returned unchanged for the app's
// error handler to map.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := verifier.VerifyToken(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return err
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// bearerToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when there is none.
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUserID returns the user id AuthMiddleware stored for the request.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(userContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
