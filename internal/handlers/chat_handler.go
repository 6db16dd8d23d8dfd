package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumeai/internal/models"
	"resumeai/internal/repositories"
)

const chatTitleMaxLen = 50

type ChatHandler struct {
	chatRepo repositories.ChatRepository
}

func NewChatHandler(chatRepo repositories.ChatRepository) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo}
}

// HandleList handles GET /chats
func (h *ChatHandler) HandleList(c *fiber.Ctx) error {
	chats, err := h.chatRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list chats",
		})
	}
	return c.JSON(fiber.Map{"chats": chats})
}

// HandleGet handles GET /chats/:id
func (h *ChatHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chat id",
		})
	}

	chat, err := h.chatRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "chat not found",
		})
	}
	return c.JSON(chat)
}

// HandleCreate handles POST /chats. The chat title is derived from the first
// user message.
func (h *ChatHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages are required",
		})
	}

	chat := models.Chat{
		Title:    deriveTitle(req.Messages),
		Messages: toChatMessages(req.Messages),
	}
	if err := h.chatRepo.Create(&chat); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create chat",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(chat)
}

// HandleAddMessages handles POST /chats/:id/messages
func (h *ChatHandler) HandleAddMessages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chat id",
		})
	}

	var req models.AddMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages are required",
		})
	}

	if err := h.chatRepo.AddMessages(id, toChatMessages(req.Messages)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "chat not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func deriveTitle(messages []models.MessagePayload) string {
	for _, m := range messages {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			title := strings.TrimSpace(m.Content)
			// Truncate by runes, not bytes, so a multi-byte character at the
			// boundary cannot produce an invalid title.
			if runes := []rune(title); len(runes) > chatTitleMaxLen {
				title = string(runes[:chatTitleMaxLen])
			}
			return title
		}
	}
	return "New chat"
}

func toChatMessages(payloads []models.MessagePayload) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, len(payloads))
	for _, p := range payloads {
		messages = append(messages, models.ChatMessage{
			Role:    p.Role,
			Content: p.Content,
		})
	}
	return messages
}
