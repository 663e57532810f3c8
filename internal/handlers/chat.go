package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/culture"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/utils"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 500
)

func (h *Handler) ListChats(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "userId is required")
	}
	chats, err := h.store.ListChats(c.UserContext(), userID)
	if err != nil {
		return h.storeError(c, err, "chats")
	}
	return c.JSON(fiber.Map{"chats": chats})
}

func (h *Handler) CreateChat(c *fiber.Ctx) error {
	var req models.CreateChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Participants[0] == req.Participants[1] {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "participants must differ")
	}

	now := h.now()
	chat := &models.Chat{
		Participants:    req.Participants,
		Relationship:    req.Relationship,
		SenderCountry:   req.SenderCountry,
		ReceiverCountry: req.ReceiverCountry,
		CreatedAt:       now,
		Timestamp:       now.UnixMilli(),
	}
	if err := h.store.CreateChat(c.UserContext(), chat); err != nil {
		return h.storeError(c, err, "chat")
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (h *Handler) GetChat(c *fiber.Ctx) error {
	chat, err := h.store.GetChat(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.storeError(c, err, "chat")
	}
	return c.JSON(chat)
}

func (h *Handler) MarkChatRead(c *fiber.Ctx) error {
	if err := h.store.MarkChatRead(c.UserContext(), c.Params("id")); err != nil {
		return h.storeError(c, err, "chat")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	chatID := c.Query("chatId")
	if chatID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "chatId is required")
	}
	limit := defaultMessageLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxMessageLimit)
	}

	msgs, err := h.store.ListMessages(c.UserContext(), chatID, limit)
	if err != nil {
		return h.storeError(c, err, "messages")
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// SendMessage persists a message over HTTP, for clients that are not on the relay.
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	chat, err := h.store.GetChat(c.UserContext(), req.ChatID)
	if err != nil {
		return h.storeError(c, err, "chat")
	}
	if !chat.HasParticipant(req.UserID) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "user is not a participant of this chat")
	}

	msg := &models.Message{
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		Text:      req.Text,
		Timestamp: h.now().UnixMilli(),
	}
	if err := h.store.AddMessage(c.UserContext(), msg); err != nil {
		return h.storeError(c, err, "chat")
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handler) GetUserProfile(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "userId is required")
	}
	p, err := h.store.GetProfile(c.UserContext(), userID)
	if err != nil {
		return h.storeError(c, err, "profile")
	}
	return c.JSON(p)
}

// SaveUserProfile creates or updates a profile. The language defaults to the
// country's main language.
func (h *Handler) SaveUserProfile(c *fiber.Ctx) error {
	var req models.UserProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lang := req.Language
	if lang == "" {
		lang = models.DefaultLanguage
		if cd := culture.GetCulturalData(req.Country); cd != nil {
			lang = cd.Language
		}
	}
	now := h.now()
	profile := &models.UserProfile{
		UserID:    req.UserID,
		Name:      req.Name,
		Country:   req.Country,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.UpsertProfile(c.UserContext(), profile); err != nil {
		return h.storeError(c, err, "profile")
	}

	saved, err := h.store.GetProfile(c.UserContext(), req.UserID)
	if err != nil {
		return h.storeError(c, err, "profile")
	}
	return c.JSON(saved)
}
