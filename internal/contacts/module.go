// Package contacts provides the contact directory bounded context module.
package contacts

import (
	"context"

	"whatsapp_crm_backend/internal/contacts/handler"
	"whatsapp_crm_backend/internal/contacts/repository"
	"whatsapp_crm_backend/internal/contacts/service"
	apphttp "whatsapp_crm_backend/internal/http"
	"whatsapp_crm_backend/internal/leads/ports"
	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
		svc:     svc,
	}
}

func (m *Module) Name() string {
	return "contacts"
}

// Repository returns the contact repository for external use (webhook intake).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// ContactReader returns an adapter satisfying the leads module's contact port.
func (m *Module) ContactReader() ports.ContactReader {
	return &contactReader{repo: m.repo}
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	contactsGroup := ctx.Protected.Group("/contacts")
	m.handler.RegisterRoutes(contactsGroup)
}

// contactReader adapts the contacts repository to the leads ports.
type contactReader struct {
	repo *repository.Repository
}

func (r *contactReader) GetContact(ctx context.Context, contactID, accountID uuid.UUID) (ports.Contact, error) {
	contact, err := r.repo.GetByID(ctx, contactID, accountID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ports.Contact{}, apperr.NotFound("contact not found")
		}
		return ports.Contact{}, err
	}
	return ports.Contact{
		ID:       contact.ID,
		Name:     contact.Name,
		Email:    contact.Email,
		Phone:    contact.Phone,
		WhatsApp: contact.WhatsApp,
		Company:  contact.Company,
	}, nil
}

var _ apphttp.Module = (*Module)(nil)
