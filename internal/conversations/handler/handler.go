// Package handler exposes the conversations module over HTTP.
package handler

import (
	"net/http"
	"time"

	"whatsapp_crm_backend/internal/conversations/repository"
	"whatsapp_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/messages", h.ListMessages)
}

type conversationResponse struct {
	ID            uuid.UUID  `json:"id"`
	ContactID     uuid.UUID  `json:"contactId"`
	PhoneNumberID uuid.UUID  `json:"phoneNumberId"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type messageResponse struct {
	ID        uuid.UUID `json:"id"`
	Direction string    `json:"direction"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	conversations, err := h.repo.List(c.Request.Context(), id.AccountID())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]conversationResponse, len(conversations))
	for i, conversation := range conversations {
		items[i] = toConversationResponse(conversation)
	}
	httpkit.OK(c, gin.H{"conversations": items})
}

func (h *Handler) GetByID(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	conversation, err := h.repo.GetByID(c.Request.Context(), conversationID, id.AccountID())
	if err != nil {
		if err == repository.ErrNotFound {
			httpkit.Error(c, http.StatusNotFound, "conversation not found", nil)
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toConversationResponse(conversation))
}

func (h *Handler) ListMessages(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), conversationID, id.AccountID())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]messageResponse, len(messages))
	for i, m := range messages {
		items[i] = messageResponse{
			ID:        m.ID,
			Direction: m.Direction,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		}
	}
	httpkit.OK(c, gin.H{"messages": items})
}

func toConversationResponse(c repository.Conversation) conversationResponse {
	return conversationResponse{
		ID:            c.ID,
		ContactID:     c.ContactID,
		PhoneNumberID: c.PhoneNumberID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}
