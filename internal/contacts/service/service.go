// Package service implements the contact directory workflows.
package service

import (
	"context"
	"errors"

	"whatsapp_crm_backend/internal/contacts/repository"
	"whatsapp_crm_backend/internal/contacts/transport"
	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req transport.CreateContactRequest) (transport.ContactResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)
	whatsapp := req.WhatsApp
	if whatsapp == "" && normalized != "" {
		whatsapp = phone.WhatsAppID(normalized)
	}

	contact, err := s.repo.Create(ctx, repository.CreateContactParams{
		AccountID: accountID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     normalized,
		WhatsApp:  whatsapp,
		Company:   req.Company,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return transport.ContactResponse{}, apperr.Conflict("a contact already exists for this whatsapp identity")
		}
		return transport.ContactResponse{}, err
	}
	return toContactResponse(contact), nil
}

func (s *Service) GetByID(ctx context.Context, id, accountID uuid.UUID) (transport.ContactResponse, error) {
	contact, err := s.repo.GetByID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContactResponse{}, apperr.NotFound("contact not found")
		}
		return transport.ContactResponse{}, err
	}
	return toContactResponse(contact), nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID, req transport.ListContactsRequest) (transport.ContactListResponse, error) {
	contacts, err := s.repo.List(ctx, accountID, req.Search)
	if err != nil {
		return transport.ContactListResponse{}, err
	}

	items := make([]transport.ContactResponse, len(contacts))
	for i, contact := range contacts {
		items[i] = toContactResponse(contact)
	}
	return transport.ContactListResponse{Contacts: items}, nil
}

func (s *Service) Update(ctx context.Context, id, accountID uuid.UUID, req transport.UpdateContactRequest) (transport.ContactResponse, error) {
	current, err := s.repo.GetByID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContactResponse{}, apperr.NotFound("contact not found")
		}
		return transport.ContactResponse{}, err
	}

	params := repository.UpdateParams{
		Name:    current.Name,
		Email:   current.Email,
		Phone:   current.Phone,
		Company: current.Company,
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Email != nil {
		params.Email = *req.Email
	}
	if req.Phone != nil {
		params.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Company != nil {
		params.Company = *req.Company
	}

	contact, err := s.repo.Update(ctx, id, accountID, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContactResponse{}, apperr.NotFound("contact not found")
		}
		return transport.ContactResponse{}, err
	}
	return toContactResponse(contact), nil
}

func (s *Service) Delete(ctx context.Context, id, accountID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("contact not found")
	}
	return err
}

func toContactResponse(c repository.Contact) transport.ContactResponse {
	return transport.ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		WhatsApp:  c.WhatsApp,
		Company:   c.Company,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
