package service

import (
	"context"
	"time"

	"whatsapp_crm_backend/internal/events"
	"whatsapp_crm_backend/internal/leads/domain"
	"whatsapp_crm_backend/internal/leads/ports"
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/platform/logger"
	"whatsapp_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// CaptureStore is the persistence surface the capture workflow needs.
// *repository.Repository satisfies it.
type CaptureStore interface {
	CaptureUpsert(ctx context.Context, params repository.CaptureUpsertParams, score repository.ScoreFunc) (repository.Lead, bool, error)
}

// CaptureService turns inbound conversation activity into lead records. Each
// run classifies the latest inbound message, merges it into the lead via an
// atomic upsert, and refreshes the score from the merged state.
type CaptureService struct {
	conversations ports.ConversationReader
	contacts      ports.ContactReader
	messages      ports.MessageReader
	store         CaptureStore
	classifier    *domain.Classifier
	bus           events.Bus
	log           *logger.Logger
	now           func() time.Time
}

func NewCaptureService(
	conversations ports.ConversationReader,
	contacts ports.ContactReader,
	messages ports.MessageReader,
	store CaptureStore,
	bus events.Bus,
	log *logger.Logger,
) *CaptureService {
	return &CaptureService{
		conversations: conversations,
		contacts:      contacts,
		messages:      messages,
		store:         store,
		classifier:    domain.NewDefaultClassifier(),
		bus:           bus,
		log:           log,
		now:           time.Now,
	}
}

// Capture runs the capture workflow for one conversation. It returns the
// created-or-merged lead, or nil when the conversation has no inbound
// messages to capture from.
func (s *CaptureService) Capture(ctx context.Context, accountID, conversationID uuid.UUID) (*repository.Lead, error) {
	conversation, err := s.conversations.GetConversation(ctx, conversationID, accountID)
	if err != nil {
		return nil, err
	}

	contact, err := s.contacts.GetContact(ctx, conversation.ContactID, accountID)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.LatestInbound(ctx, conversationID, accountID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, nil
	}

	intent := s.classifier.DetectIntent(message.Body)
	keywords := s.classifier.ExtractKeywords(message.Body)
	now := s.now()

	// Score the merged row, not this event's inputs: on a merge the stored
	// intent may be locked to an earlier classification and message_count
	// reflects the full history. The store runs upsert and score update in
	// one transaction so a lead never commits with a stale score.
	lead, created, err := s.store.CaptureUpsert(ctx, repository.CaptureUpsertParams{
		AccountID:      accountID,
		ConversationID: conversationID,
		ContactID:      contact.ID,
		PhoneNumberID:  conversation.PhoneNumberID,
		Name:           contact.Name,
		Email:          contact.Email,
		Phone:          phone.NormalizeE164(contact.BestPhone()),
		Company:        contact.Company,
		Intent:         intent,
		Keywords:       keywords,
		SourceMessage:  message.Body,
		Now:            now,
	}, func(merged repository.Lead) (int, domain.ScoreBreakdown) {
		return domain.CalculateScore(merged.Snapshot(), now)
	})
	if err != nil {
		return nil, err
	}

	s.log.CaptureEvent(accountID, conversationID, string(lead.Intent), created, lead.Score)
	s.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		AccountID: accountID,
		LeadID:    lead.ID,
		Intent:    string(lead.Intent),
		Score:     lead.Score,
		Created:   created,
	})

	return &lead, nil
}
