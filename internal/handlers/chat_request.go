package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
	"github.com/hmmwtf/team30-aws-hackathon-sub000/utils"
)

// ListChatRequests returns the pending requests addressed to userId.
func (h *Handler) ListChatRequests(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "userId is required")
	}
	reqs, err := h.store.ListPendingChatRequests(c.UserContext(), userID)
	if err != nil {
		return h.storeError(c, err, "chat requests")
	}
	return c.JSON(fiber.Map{"requests": reqs})
}

func (h *Handler) CreateChatRequest(c *fiber.Ctx) error {
	var body models.NewChatRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	req := &models.ChatRequest{
		FromUserID:      body.FromUserID,
		ToUserID:        body.ToUserID,
		Relationship:    body.Relationship,
		SenderCountry:   body.SenderCountry,
		ReceiverCountry: body.ReceiverCountry,
		Status:          models.RequestPending,
		CreatedAt:       h.now(),
	}
	if err := h.store.CreateChatRequest(c.UserContext(), req); err != nil {
		return h.storeError(c, err, "chat request")
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// RespondChatRequest accepts or rejects a pending request. Accepting creates the chat.
func (h *Handler) RespondChatRequest(c *fiber.Ctx) error {
	var body models.RespondChatRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}
	ctx := c.UserContext()

	req, err := h.store.GetChatRequest(ctx, body.RequestID)
	if err != nil {
		return h.storeError(c, err, "chat request")
	}
	if req.Status != models.RequestPending {
		return utils.ErrorResponse(c, fiber.StatusConflict, "chat request already "+req.Status)
	}

	if body.Action == "reject" {
		req.Status = models.RequestRejected
		if err := h.store.UpdateChatRequest(ctx, req); err != nil {
			return h.storeError(c, err, "chat request")
		}
		return c.JSON(fiber.Map{"request": req})
	}

	now := h.now()
	chat := &models.Chat{
		Participants:    []string{req.FromUserID, req.ToUserID},
		Relationship:    req.Relationship,
		SenderCountry:   req.SenderCountry,
		ReceiverCountry: req.ReceiverCountry,
		CreatedAt:       now,
		Timestamp:       now.UnixMilli(),
	}
	if err := h.store.CreateChat(ctx, chat); err != nil {
		return h.storeError(c, err, "chat")
	}

	req.Status = models.RequestAccepted
	req.ChatID = chat.ID
	if err := h.store.UpdateChatRequest(ctx, req); err != nil {
		return h.storeError(c, err, "chat request")
	}
	h.log.Info().Str("request_id", req.ID).Str("chat_id", chat.ID).Msg("chat request accepted")
	return c.JSON(fiber.Map{"request": req, "chat": chat})
}
