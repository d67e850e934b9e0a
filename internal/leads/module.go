// Package leads provides the lead capture and scoring bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"whatsapp_crm_backend/internal/events"
	apphttp "whatsapp_crm_backend/internal/http"
	"whatsapp_crm_backend/internal/leads/handler"
	"whatsapp_crm_backend/internal/leads/ports"
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/internal/leads/service"
	"whatsapp_crm_backend/platform/logger"
	"whatsapp_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	capture *service.CaptureService
}

// NewModule creates and initializes the leads module with all its dependencies.
// The messaging readers are satisfied by the conversations and contacts modules.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
	conversations ports.ConversationReader,
	contacts ports.ContactReader,
	messages ports.MessageReader,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	capture := service.NewCaptureService(conversations, contacts, messages, repo, eventBus, log)

	// Every persisted inbound message feeds the capture workflow. Failures
	// are logged and swallowed: a capture miss must never block message
	// ingestion, and the next message retries naturally.
	eventBus.Subscribe(events.MessageReceived{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.MessageReceived)
		if !ok {
			return nil
		}

		if _, err := capture.Capture(ctx, e.AccountID, e.ConversationID); err != nil {
			log.WithAccount(e.AccountID).Error("auto-capture failed",
				"error", err,
				"conversationId", e.ConversationID,
			)
		}
		return nil
	}))

	return &Module{
		handler: handler.New(svc, capture, val),
		svc:     svc,
		capture: capture,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use (scheduler tasks).
func (m *Module) Service() *service.Service {
	return m.svc
}

// CaptureService returns the capture workflow for external use.
func (m *Module) CaptureService() *service.CaptureService {
	return m.capture
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
