package handler

import (
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles direct messages.
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListMessages godoc
// GET /api/messages
// Returns the caller's sent and received messages plus the unread count.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	id := middleware.MustIdentity(c)
	limit, offset := pageParams(c)

	list, page, err := h.messageService.List(ctx, id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	unread, err := h.messageService.UnreadCount(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"messages": list, "unread": unread}, page)
}

// SendMessage godoc
// POST /api/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	m, err := h.messageService.Send(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

// MarkRead godoc
// POST /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), middleware.MustIdentity(c), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
