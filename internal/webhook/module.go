// Package webhook provides the inbound WhatsApp message intake module.
// Deliveries are authenticated by HMAC signature, not JWT, so the routes
// live on the public group.
package webhook

import (
	contactsrepo "whatsapp_crm_backend/internal/contacts/repository"
	conversationsrepo "whatsapp_crm_backend/internal/conversations/repository"
	"whatsapp_crm_backend/internal/events"
	apphttp "whatsapp_crm_backend/internal/http"
	"whatsapp_crm_backend/platform/config"
	"whatsapp_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook intake module implementing http.Module.
type Module struct {
	handler   *Handler
	appSecret string
}

func NewModule(
	pool *pgxpool.Pool,
	contacts *contactsrepo.Repository,
	conversations *conversationsrepo.Repository,
	bus events.Bus,
	log *logger.Logger,
	cfg config.WebhookConfig,
) *Module {
	service := NewService(NewRepository(pool), contacts, conversations, bus, log)
	return &Module{
		handler:   NewHandler(service, cfg.GetWebhookVerifyToken()),
		appSecret: cfg.GetWebhookAppSecret(),
	}
}

func (m *Module) Name() string {
	return "webhook"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook/whatsapp")
	group.GET("", m.handler.Verify)
	group.POST("", SignatureMiddleware(m.appSecret), m.handler.Receive)
}

var _ apphttp.Module = (*Module)(nil)
