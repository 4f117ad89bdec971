package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/PiyushGhegade/SwapShopCampusMarket/internal/log"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
)

type MessageHandler struct {
	Messages *services.MessageService
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	convs, err := h.Messages.Conversations(actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(convs)
}

func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid conversation id"})
	}
	msgs, err := h.Messages.Thread(actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msgs)
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var in struct {
		ReceiverID int64  `json:"receiverId"`
		ListingID  int64  `json:"listingId"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request body"})
	}
	m, err := h.Messages.Send(actor(c).ID, in.ReceiverID, in.ListingID, in.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid conversation id"})
	}
	changed, err := h.Messages.MarkRead(actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"updated": changed})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.Messages.UnreadCount(actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *MessageHandler) DeleteConversation(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid conversation id"})
	}
	if err := h.Messages.DeleteConversation(actor(c), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "conversation.delete", map[string]any{"conversation_id": id})
	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}
