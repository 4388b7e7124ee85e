package middleware

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/afinmh/TajweeDo/shared"
)

// IdentityResolver maps request credentials to a user id.
type IdentityResolver interface {
	ResolveUserID(authHeader, cookieToken string) (string, error)
}

func resolve(resolver IdentityResolver, c *fiber.Ctx) (string, error) {
	return resolver.ResolveUserID(c.Get(fiber.HeaderAuthorization), c.Cookies(shared.TokenCookie))
}

// RequiredAuth rejects requests without a valid token and stores the user id in Locals.
func RequiredAuth(resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := resolve(resolver, c)
		if err != nil {
			log.WithFields(log.Fields{"path": c.Path(), "error": err.Error()}).Debug("Rejected unauthenticated request")
			return shared.ResponseError(c, shared.ErrUnauthorized.Wrap(err))
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

// OptionalAuth sets the user id when a valid token is present and never rejects.
func OptionalAuth(resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := resolve(resolver, c); err == nil {
			c.Locals(shared.UserID, userID)
		}
		return c.Next()
	}
}

// UserIDFrom returns the resolved user id, or "" for anonymous requests.
func UserIDFrom(c *fiber.Ctx) string {
	userID, _ := c.Locals(shared.UserID).(string)
	return userID
}
