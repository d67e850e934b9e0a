package service

import (
	"context"
	"testing"
	"time"

	"whatsapp_crm_backend/internal/events"
	"whatsapp_crm_backend/internal/leads/domain"
	"whatsapp_crm_backend/internal/leads/ports"
	"whatsapp_crm_backend/internal/leads/repository"
	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/logger"

	"github.com/google/uuid"
)

var captureNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeConversations struct {
	conversation ports.Conversation
	err          error
}

func (f *fakeConversations) GetConversation(_ context.Context, _, _ uuid.UUID) (ports.Conversation, error) {
	return f.conversation, f.err
}

type fakeContacts struct {
	contact ports.Contact
	err     error
}

func (f *fakeContacts) GetContact(_ context.Context, _, _ uuid.UUID) (ports.Contact, error) {
	return f.contact, f.err
}

type fakeMessages struct {
	message *ports.InboundMessage
	err     error
}

func (f *fakeMessages) LatestInbound(_ context.Context, _, _ uuid.UUID) (*ports.InboundMessage, error) {
	return f.message, f.err
}

// fakeCaptureStore records the upsert parameters and mimics the merge the
// database would perform, including scoring the merged row before it is
// returned, matching the real store's single-transaction behavior.
type fakeCaptureStore struct {
	upserted  *repository.CaptureUpsertParams
	mergeInto *repository.Lead

	scoredID    uuid.UUID
	scoredValue int
	scoredBD    domain.ScoreBreakdown
}

func (f *fakeCaptureStore) CaptureUpsert(_ context.Context, params repository.CaptureUpsertParams, score repository.ScoreFunc) (repository.Lead, bool, error) {
	f.upserted = &params

	lead := repository.Lead{
		ID:             uuid.New(),
		AccountID:      params.AccountID,
		ConversationID: params.ConversationID,
		ContactID:      params.ContactID,
		PhoneNumberID:  params.PhoneNumberID,
		Name:           params.Name,
		Email:          params.Email,
		Phone:          params.Phone,
		Company:        params.Company,
		Intent:         params.Intent,
		Keywords:       params.Keywords,
		MessageCount:   1,
		FirstMessage:   params.Now,
		LastMessage:    params.Now,
		Status:         domain.StatusNew,
		SourceMessage:  params.SourceMessage,
	}
	created := true

	if f.mergeInto != nil {
		lead = *f.mergeInto
		lead.MessageCount++
		lead.LastMessage = params.Now
		lead.SourceMessage = params.SourceMessage
		if !lead.IntentLocked {
			lead.Intent = params.Intent
		}
		created = false
	}

	lead.Score, lead.Breakdown = score(lead)
	f.scoredID = lead.ID
	f.scoredValue = lead.Score
	f.scoredBD = lead.Breakdown
	return lead, created, nil
}

func newCaptureFixture(message *ports.InboundMessage, store *fakeCaptureStore) (*CaptureService, ports.Conversation, ports.Contact) {
	conversation := ports.Conversation{
		ID:            uuid.New(),
		AccountID:     uuid.New(),
		ContactID:     uuid.New(),
		PhoneNumberID: uuid.New(),
	}
	contact := ports.Contact{
		ID:       conversation.ContactID,
		Name:     "Ada Vries",
		WhatsApp: "31612345678",
		Company:  "Vries BV",
	}

	log := logger.New("development")
	svc := NewCaptureService(
		&fakeConversations{conversation: conversation},
		&fakeContacts{contact: contact},
		&fakeMessages{message: message},
		store,
		events.NewInMemoryBus(log),
		log,
	)
	svc.now = func() time.Time { return captureNow }
	return svc, conversation, contact
}

func TestCaptureReturnsNilWithoutInboundMessages(t *testing.T) {
	svc, conversation, _ := newCaptureFixture(nil, &fakeCaptureStore{})

	lead, err := svc.Capture(context.Background(), conversation.AccountID, conversation.ID)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if lead != nil {
		t.Fatalf("expected nil lead for a conversation without inbound messages, got %+v", lead)
	}
}

func TestCapturePropagatesConversationNotFound(t *testing.T) {
	log := logger.New("development")
	svc := NewCaptureService(
		&fakeConversations{err: apperr.NotFound("conversation not found")},
		&fakeContacts{},
		&fakeMessages{},
		&fakeCaptureStore{},
		events.NewInMemoryBus(log),
		log,
	)

	_, err := svc.Capture(context.Background(), uuid.New(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCaptureClassifiesAndUpserts(t *testing.T) {
	store := &fakeCaptureStore{}
	svc, conversation, contact := newCaptureFixture(&ports.InboundMessage{
		ID:        uuid.New(),
		Body:      "How much does the premium plan cost?",
		CreatedAt: captureNow.Add(-time.Minute),
	}, store)

	lead, err := svc.Capture(context.Background(), conversation.AccountID, conversation.ID)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if lead == nil {
		t.Fatal("expected a lead")
	}

	if store.upserted == nil {
		t.Fatal("expected an upsert")
	}
	if store.upserted.Intent != domain.IntentPricingInquiry {
		t.Fatalf("expected pricing_inquiry, got %s", store.upserted.Intent)
	}
	if store.upserted.Phone != "+31612345678" {
		t.Fatalf("expected normalized WhatsApp phone, got %q", store.upserted.Phone)
	}
	if store.upserted.ContactID != contact.ID {
		t.Fatalf("expected contact %s, got %s", contact.ID, store.upserted.ContactID)
	}

	found := false
	for _, kw := range store.upserted.Keywords {
		if kw == "cost" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected extracted keyword %q in %v", "cost", store.upserted.Keywords)
	}
}

func TestCaptureScoresTheMergedRow(t *testing.T) {
	// An existing lead whose intent was locked by an earlier classification:
	// the new message must not override it, and the score must come from the
	// merged state.
	existing := &repository.Lead{
		ID:           uuid.New(),
		Intent:       domain.IntentPurchaseIntent,
		IntentLocked: true,
		Name:         "Ada Vries",
		Phone:        "+31612345678",
		MessageCount: 5,
		Status:       domain.StatusContacted,
	}
	store := &fakeCaptureStore{mergeInto: existing}
	svc, conversation, _ := newCaptureFixture(&ports.InboundMessage{
		ID:   uuid.New(),
		Body: "what is the price of support?",
	}, store)

	lead, err := svc.Capture(context.Background(), conversation.AccountID, conversation.ID)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if lead.Intent != domain.IntentPurchaseIntent {
		t.Fatalf("locked intent must survive the merge, got %s", lead.Intent)
	}

	snapshot := *existing
	snapshot.MessageCount = 6
	snapshot.LastMessage = captureNow
	wantScore, wantBD := domain.CalculateScore(snapshot.Snapshot(), captureNow)

	if store.scoredID != existing.ID {
		t.Fatalf("expected score update for %s, got %s", existing.ID, store.scoredID)
	}
	if store.scoredValue != wantScore {
		t.Fatalf("expected score %d from merged state, got %d", wantScore, store.scoredValue)
	}
	if store.scoredBD != wantBD {
		t.Fatalf("expected breakdown %+v, got %+v", wantBD, store.scoredBD)
	}
	if lead.Score != wantScore {
		t.Fatalf("returned lead should carry the fresh score %d, got %d", wantScore, lead.Score)
	}
}
