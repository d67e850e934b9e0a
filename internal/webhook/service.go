package webhook

import (
	"context"
	"strconv"
	"time"

	contactsrepo "whatsapp_crm_backend/internal/contacts/repository"
	conversationsrepo "whatsapp_crm_backend/internal/conversations/repository"
	"whatsapp_crm_backend/internal/events"
	"whatsapp_crm_backend/platform/logger"
	"whatsapp_crm_backend/platform/phone"
	"whatsapp_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// PhoneNumberResolver maps a wire phone_number_id to its tenant.
type PhoneNumberResolver interface {
	GetByWaNumberID(ctx context.Context, waNumberID string) (PhoneNumber, error)
}

// ContactStore finds or creates contacts by WhatsApp identity.
type ContactStore interface {
	UpsertByWhatsApp(ctx context.Context, accountID uuid.UUID, name, phoneNumber, whatsapp string) (contactsrepo.Contact, error)
}

// ConversationStore finds or creates threads and appends messages.
type ConversationStore interface {
	UpsertByContact(ctx context.Context, accountID, contactID, phoneNumberID uuid.UUID) (conversationsrepo.Conversation, error)
	InsertMessage(ctx context.Context, params conversationsrepo.InsertMessageParams) (conversationsrepo.Message, bool, error)
}

// Service turns Cloud API deliveries into contacts, conversations, and
// messages, and publishes a MessageReceived event per newly stored message.
type Service struct {
	phoneNumbers  PhoneNumberResolver
	contacts      ContactStore
	conversations ConversationStore
	bus           events.Bus
	log           *logger.Logger
	now           func() time.Time
}

func NewService(
	phoneNumbers PhoneNumberResolver,
	contacts ContactStore,
	conversations ConversationStore,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		phoneNumbers:  phoneNumbers,
		contacts:      contacts,
		conversations: conversations,
		bus:           bus,
		log:           log,
		now:           time.Now,
	}
}

// ProcessPayload ingests one webhook delivery. Unknown phone numbers and
// non-text messages are skipped, never errored: the sender retries failed
// deliveries, and a permanent failure would retry forever.
func (s *Service) ProcessPayload(ctx context.Context, payload Payload) error {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			if err := s.processValue(ctx, change.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) processValue(ctx context.Context, value Value) error {
	phoneNumber, err := s.phoneNumbers.GetByWaNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil {
		if err == ErrPhoneNumberNotFound {
			s.log.Warn("webhook delivery for unregistered phone number",
				"phoneNumberId", value.Metadata.PhoneNumberID)
			return nil
		}
		return err
	}

	profiles := make(map[string]string, len(value.Contacts))
	for _, contact := range value.Contacts {
		profiles[contact.WaID] = sanitize.Text(contact.Profile.Name)
	}

	stored := 0
	for _, message := range value.Messages {
		if message.Type != "text" || message.Text == nil {
			continue
		}

		contact, err := s.contacts.UpsertByWhatsApp(ctx, phoneNumber.AccountID,
			profiles[message.From], phone.NormalizeE164(message.From), message.From)
		if err != nil {
			return err
		}

		conversation, err := s.conversations.UpsertByContact(ctx,
			phoneNumber.AccountID, contact.ID, phoneNumber.ID)
		if err != nil {
			return err
		}

		persisted, duplicate, err := s.conversations.InsertMessage(ctx, conversationsrepo.InsertMessageParams{
			AccountID:      phoneNumber.AccountID,
			ConversationID: conversation.ID,
			WaMessageID:    message.ID,
			Direction:      conversationsrepo.DirectionInbound,
			Body:           message.Text.Body,
			CreatedAt:      messageTime(message.Timestamp, s.now),
		})
		if err != nil {
			return err
		}
		if duplicate {
			continue
		}
		stored++

		s.bus.Publish(ctx, events.MessageReceived{
			BaseEvent:      events.NewBaseEvent(),
			AccountID:      phoneNumber.AccountID,
			ConversationID: conversation.ID,
			ContactID:      contact.ID,
			MessageID:      persisted.ID,
		})
	}

	s.log.WebhookEvent("messages", phoneNumber.AccountID, stored)
	return nil
}

// messageTime parses the delivery's unix-seconds timestamp, falling back to
// the local clock on garbage.
func messageTime(timestamp string, now func() time.Time) time.Time {
	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil || seconds <= 0 {
		return now()
	}
	return time.Unix(seconds, 0).UTC()
}
