package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	applog "github.com/PiyushGhegade/SwapShopCampusMarket/internal/log"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
)

func bearer(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// actor returns the authenticated user attached by the middleware, or
// nil for anonymous requests.
func actor(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// AttachUser resolves the bearer token if present and stores the user in
// Locals. It never rejects; visibility-sensitive routes read the actor.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearer(c); tok != "" {
			if u, err := auth.CurrentUser(tok); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("userID", u.ID)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects requests without a valid bearer token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}
		u, err := auth.CurrentUser(tok)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

// RequireAdmin allows only admins through.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}
		u, err := auth.CurrentUser(tok)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
		}
		if u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}
