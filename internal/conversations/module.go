// Package conversations provides the WhatsApp thread bounded context module.
package conversations

import (
	"context"

	"whatsapp_crm_backend/internal/conversations/handler"
	"whatsapp_crm_backend/internal/conversations/repository"
	apphttp "whatsapp_crm_backend/internal/http"
	"whatsapp_crm_backend/internal/leads/ports"
	"whatsapp_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	return &Module{
		handler: handler.New(repo),
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "conversations"
}

// Repository returns the conversation repository for external use (webhook intake).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// ConversationReader returns an adapter satisfying the leads module's
// conversation port.
func (m *Module) ConversationReader() ports.ConversationReader {
	return &conversationReader{repo: m.repo}
}

// MessageReader returns an adapter satisfying the leads module's message port.
func (m *Module) MessageReader() ports.MessageReader {
	return &messageReader{repo: m.repo}
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	conversationsGroup := ctx.Protected.Group("/conversations")
	m.handler.RegisterRoutes(conversationsGroup)
}

type conversationReader struct {
	repo *repository.Repository
}

func (r *conversationReader) GetConversation(ctx context.Context, conversationID, accountID uuid.UUID) (ports.Conversation, error) {
	conversation, err := r.repo.GetByID(ctx, conversationID, accountID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ports.Conversation{}, apperr.NotFound("conversation not found")
		}
		return ports.Conversation{}, err
	}
	return ports.Conversation{
		ID:            conversation.ID,
		AccountID:     conversation.AccountID,
		ContactID:     conversation.ContactID,
		PhoneNumberID: conversation.PhoneNumberID,
		CreatedAt:     conversation.CreatedAt,
	}, nil
}

type messageReader struct {
	repo *repository.Repository
}

func (r *messageReader) LatestInbound(ctx context.Context, conversationID, accountID uuid.UUID) (*ports.InboundMessage, error) {
	message, err := r.repo.LatestInbound(ctx, conversationID, accountID)
	if err != nil || message == nil {
		return nil, err
	}
	return &ports.InboundMessage{
		ID:        message.ID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}, nil
}

var _ apphttp.Module = (*Module)(nil)
