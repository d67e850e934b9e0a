// Package ports defines the interfaces the leads module requires from its
// messaging collaborators. Adapters over the conversations and contacts
// modules satisfy them; tests substitute fakes.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversation is the slice of a conversation the capture workflow reads.
type Conversation struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	ContactID     uuid.UUID
	PhoneNumberID uuid.UUID
	CreatedAt     time.Time
}

// Contact is the profile snapshot source for a captured lead.
type Contact struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Phone    string
	WhatsApp string
	Company  string
}

// BestPhone prefers the WhatsApp identity over the plain phone number.
func (c Contact) BestPhone() string {
	if c.WhatsApp != "" {
		return c.WhatsApp
	}
	return c.Phone
}

// InboundMessage is the latest customer-sent message in a conversation.
type InboundMessage struct {
	ID        uuid.UUID
	Body      string
	CreatedAt time.Time
}

// ConversationReader loads conversations by id within a tenant.
// Implementations return an apperr KindNotFound error when absent.
type ConversationReader interface {
	GetConversation(ctx context.Context, conversationID, accountID uuid.UUID) (Conversation, error)
}

// ContactReader loads contacts by id within a tenant.
// Implementations return an apperr KindNotFound error when absent.
type ContactReader interface {
	GetContact(ctx context.Context, contactID, accountID uuid.UUID) (Contact, error)
}

// MessageReader queries a conversation's message history.
type MessageReader interface {
	// LatestInbound returns the most recent inbound-direction message by
	// descending creation time, or nil when the conversation has none.
	LatestInbound(ctx context.Context, conversationID, accountID uuid.UUID) (*InboundMessage, error)
}
