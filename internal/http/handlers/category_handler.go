package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

type CategoryHandler struct {
	Store    store.Store
	Listings *services.ListingService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Store.Categories()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) ListingsInCategory(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category id"})
	}
	ls, err := h.Listings.ByCategory(actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ls)
}
