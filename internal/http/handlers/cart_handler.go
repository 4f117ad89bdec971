package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	lines, err := h.Cart.View(actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lines)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in struct {
		ListingID int64 `json:"listingId"`
		Quantity  *int  `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if in.ListingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "listingId is required"})
	}
	// Omitted quantity defaults to 1; a supplied non-positive one is
	// rejected downstream.
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	lines, err := h.Cart.Add(actor(c).ID, in.ListingID, qty)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lines)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := idParam(c, "itemId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid cart item id"})
	}
	var in struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	if in.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}
	lines, err := h.Cart.UpdateQuantity(actor(c).ID, id, *in.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lines)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, ok := idParam(c, "itemId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid cart item id"})
	}
	lines, err := h.Cart.Remove(actor(c).ID, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lines)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(actor(c).ID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
