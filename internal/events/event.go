// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"whatsapp_crm_backend/platform/events"
	"whatsapp_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Messaging Domain Events
// =============================================================================

// MessageReceived is published when the webhook persists a new inbound message.
type MessageReceived struct {
	BaseEvent
	AccountID      uuid.UUID `json:"accountId"`
	ConversationID uuid.UUID `json:"conversationId"`
	ContactID      uuid.UUID `json:"contactId"`
	MessageID      uuid.UUID `json:"messageId"`
}

func (e MessageReceived) EventName() string { return "messaging.message.received" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCaptured is published when the capture workflow creates or refreshes a lead.
type LeadCaptured struct {
	BaseEvent
	AccountID uuid.UUID `json:"accountId"`
	LeadID    uuid.UUID `json:"leadId"`
	Intent    string    `json:"intent"`
	Score     int       `json:"score"`
	Created   bool      `json:"created"`
}

func (e LeadCaptured) EventName() string { return "leads.lead.captured" }

// LeadStatusChanged is published when a lead transitions to a new status.
type LeadStatusChanged struct {
	BaseEvent
	AccountID uuid.UUID `json:"accountId"`
	LeadID    uuid.UUID `json:"leadId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadConverted is published when a lead reaches the converted status.
type LeadConverted struct {
	BaseEvent
	AccountID       uuid.UUID `json:"accountId"`
	LeadID          uuid.UUID `json:"leadId"`
	ConversionValue *float64  `json:"conversionValue,omitempty"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }
