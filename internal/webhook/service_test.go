package webhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	contactsrepo "whatsapp_crm_backend/internal/contacts/repository"
	conversationsrepo "whatsapp_crm_backend/internal/conversations/repository"
	"whatsapp_crm_backend/internal/events"
	"whatsapp_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const deliveryFixture = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"id": "entry-1",
		"changes": [{
			"field": "messages",
			"value": {
				"messaging_product": "whatsapp",
				"metadata": {"display_phone_number": "15551234567", "phone_number_id": "pn-123"},
				"contacts": [{"wa_id": "31612345678", "profile": {"name": "Ada Vries"}}],
				"messages": [
					{"id": "wamid.1", "from": "31612345678", "timestamp": "1750000000", "type": "text", "text": {"body": "how much does it cost?"}},
					{"id": "wamid.2", "from": "31612345678", "timestamp": "1750000060", "type": "image"}
				]
			}
		}]
	}]
}`

type fakeResolver struct {
	known map[string]PhoneNumber
}

func (f *fakeResolver) GetByWaNumberID(_ context.Context, waNumberID string) (PhoneNumber, error) {
	pn, ok := f.known[waNumberID]
	if !ok {
		return PhoneNumber{}, ErrPhoneNumberNotFound
	}
	return pn, nil
}

type fakeContactStore struct {
	upserts []string
	contact contactsrepo.Contact
}

func (f *fakeContactStore) UpsertByWhatsApp(_ context.Context, accountID uuid.UUID, name, phoneNumber, whatsapp string) (contactsrepo.Contact, error) {
	f.upserts = append(f.upserts, whatsapp)
	contact := f.contact
	contact.AccountID = accountID
	contact.Name = name
	contact.Phone = phoneNumber
	contact.WhatsApp = whatsapp
	return contact, nil
}

type fakeConversationStore struct {
	conversation conversationsrepo.Conversation
	inserted     []conversationsrepo.InsertMessageParams
	duplicates   map[string]bool
}

func (f *fakeConversationStore) UpsertByContact(_ context.Context, accountID, contactID, phoneNumberID uuid.UUID) (conversationsrepo.Conversation, error) {
	conversation := f.conversation
	conversation.AccountID = accountID
	conversation.ContactID = contactID
	conversation.PhoneNumberID = phoneNumberID
	return conversation, nil
}

func (f *fakeConversationStore) InsertMessage(_ context.Context, params conversationsrepo.InsertMessageParams) (conversationsrepo.Message, bool, error) {
	if f.duplicates[params.WaMessageID] {
		return conversationsrepo.Message{}, true, nil
	}
	f.inserted = append(f.inserted, params)
	return conversationsrepo.Message{
		ID:             uuid.New(),
		AccountID:      params.AccountID,
		ConversationID: params.ConversationID,
		Body:           params.Body,
		CreatedAt:      params.CreatedAt,
	}, false, nil
}

type recordingHandler struct {
	events chan events.Event
}

func (h *recordingHandler) Handle(_ context.Context, event events.Event) error {
	h.events <- event
	return nil
}

func newIntakeFixture(resolver *fakeResolver, contacts *fakeContactStore, conversations *fakeConversationStore) (*Service, *recordingHandler) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	recorder := &recordingHandler{events: make(chan events.Event, 8)}
	bus.Subscribe(events.MessageReceived{}.EventName(), recorder)

	svc := NewService(resolver, contacts, conversations, bus, log)
	return svc, recorder
}

func TestProcessPayloadStoresTextMessages(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(deliveryFixture), &payload); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	accountID := uuid.New()
	resolver := &fakeResolver{known: map[string]PhoneNumber{
		"pn-123": {ID: uuid.New(), AccountID: accountID, WaNumberID: "pn-123"},
	}}
	contacts := &fakeContactStore{contact: contactsrepo.Contact{ID: uuid.New()}}
	conversations := &fakeConversationStore{conversation: conversationsrepo.Conversation{ID: uuid.New()}}

	svc, recorder := newIntakeFixture(resolver, contacts, conversations)
	if err := svc.ProcessPayload(context.Background(), payload); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}

	// Only the text message is stored; the image is skipped.
	if len(conversations.inserted) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(conversations.inserted))
	}

	stored := conversations.inserted[0]
	if stored.AccountID != accountID {
		t.Fatalf("message stored under wrong account: %s", stored.AccountID)
	}
	if stored.Body != "how much does it cost?" {
		t.Fatalf("unexpected body %q", stored.Body)
	}
	if stored.Direction != conversationsrepo.DirectionInbound {
		t.Fatalf("expected inbound direction, got %q", stored.Direction)
	}
	want := time.Unix(1750000000, 0).UTC()
	if !stored.CreatedAt.Equal(want) {
		t.Fatalf("expected wire timestamp %v, got %v", want, stored.CreatedAt)
	}

	select {
	case event := <-recorder.events:
		received, ok := event.(events.MessageReceived)
		if !ok {
			t.Fatalf("unexpected event type %T", event)
		}
		if received.AccountID != accountID {
			t.Fatalf("event carries wrong account: %s", received.AccountID)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a MessageReceived event")
	}
}

func TestProcessPayloadSkipsUnregisteredPhoneNumbers(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(deliveryFixture), &payload); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	resolver := &fakeResolver{known: map[string]PhoneNumber{}}
	contacts := &fakeContactStore{}
	conversations := &fakeConversationStore{}

	svc, _ := newIntakeFixture(resolver, contacts, conversations)
	if err := svc.ProcessPayload(context.Background(), payload); err != nil {
		t.Fatalf("unregistered numbers must not error the delivery: %v", err)
	}
	if len(conversations.inserted) != 0 {
		t.Fatalf("expected no stored messages, got %d", len(conversations.inserted))
	}
}

func TestProcessPayloadSuppressesDuplicateDeliveries(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(deliveryFixture), &payload); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	resolver := &fakeResolver{known: map[string]PhoneNumber{
		"pn-123": {ID: uuid.New(), AccountID: uuid.New(), WaNumberID: "pn-123"},
	}}
	contacts := &fakeContactStore{contact: contactsrepo.Contact{ID: uuid.New()}}
	conversations := &fakeConversationStore{
		conversation: conversationsrepo.Conversation{ID: uuid.New()},
		duplicates:   map[string]bool{"wamid.1": true},
	}

	svc, recorder := newIntakeFixture(resolver, contacts, conversations)
	if err := svc.ProcessPayload(context.Background(), payload); err != nil {
		t.Fatalf("ProcessPayload: %v", err)
	}
	if len(conversations.inserted) != 0 {
		t.Fatalf("redelivered message must not be stored again, got %d inserts", len(conversations.inserted))
	}

	select {
	case event := <-recorder.events:
		t.Fatalf("no event expected for a duplicate delivery, got %v", event.EventName())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMessageTimeFallsBackToClock(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	if got := messageTime("not-a-number", clock); !got.Equal(now) {
		t.Fatalf("expected clock fallback, got %v", got)
	}
	if got := messageTime("1750000000", clock); !got.Equal(time.Unix(1750000000, 0).UTC()) {
		t.Fatalf("expected parsed timestamp, got %v", got)
	}
}
