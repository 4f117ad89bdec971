package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/PiyushGhegade/SwapShopCampusMarket/internal/log"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	u, err := h.Auth.Register(in)
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": in.Email})
		return fail(c, err)
	}
	tok, err := h.Auth.Token(u)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "auth.register.success", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u, "token": tok})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	u, tok, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, err)
	}
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"user": u, "token": tok})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(actor(c))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var in services.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	u, err := h.Auth.UpdateProfile(actor(c).ID, in)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "profile.update", map[string]any{"user_id": u.ID})
	return c.JSON(u)
}
