package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateContactRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"max=20"`
	WhatsApp string `json:"whatsapp,omitempty" validate:"max=20"`
	Company  string `json:"company,omitempty" validate:"max=200"`
}

type UpdateContactRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
}

type ListContactsRequest struct {
	Search string `form:"search" validate:"max=100"`
}

// Response DTOs
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	WhatsApp  string    `json:"whatsapp"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}
