// Package repository provides data access for conversations and their
// message history. Every query is tenant-scoped by account_id.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("conversation not found")

// Message direction constants.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Conversation is one WhatsApp thread between a contact and a tenant phone
// number.
type Conversation struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	ContactID     uuid.UUID
	PhoneNumberID uuid.UUID
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is one entry in a conversation's history.
type Message struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	ConversationID uuid.UUID
	WaMessageID    string
	Direction      string
	Body           string
	CreatedAt      time.Time
}

const conversationColumns = `id, account_id, contact_id, phone_number_id, last_message_at, created_at, updated_at`

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.AccountID, &c.ContactID, &c.PhoneNumberID, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getConversationByIDQuery = `
	SELECT ` + conversationColumns + `
	FROM conversations
	WHERE id = $1 AND account_id = $2`

func (r *Repository) GetByID(ctx context.Context, id, accountID uuid.UUID) (Conversation, error) {
	conversation, err := scanConversation(r.pool.QueryRow(ctx, getConversationByIDQuery, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	return conversation, err
}

// upsertConversationQuery keys on (account_id, contact_id, phone_number_id)
// so webhook deliveries converge on one thread per contact and tenant number.
const upsertConversationQuery = `
	INSERT INTO conversations (account_id, contact_id, phone_number_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (account_id, contact_id, phone_number_id) DO UPDATE SET
		updated_at = now()
	RETURNING ` + conversationColumns

// UpsertByContact finds or creates the conversation for a contact on a
// tenant phone number.
func (r *Repository) UpsertByContact(ctx context.Context, accountID, contactID, phoneNumberID uuid.UUID) (Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx, upsertConversationQuery, accountID, contactID, phoneNumberID))
}

const listConversationsQuery = `
	SELECT ` + conversationColumns + `
	FROM conversations
	WHERE account_id = $1
	ORDER BY last_message_at DESC NULLS LAST, created_at DESC`

func (r *Repository) List(ctx context.Context, accountID uuid.UUID) ([]Conversation, error) {
	rows, err := r.pool.Query(ctx, listConversationsQuery, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

// InsertMessageParams is one message to append to a conversation.
type InsertMessageParams struct {
	AccountID      uuid.UUID
	ConversationID uuid.UUID
	WaMessageID    string
	Direction      string
	Body           string
	CreatedAt      time.Time
}

const insertMessageQuery = `
	INSERT INTO messages (account_id, conversation_id, wa_message_id, direction, body, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (account_id, wa_message_id) WHERE wa_message_id <> '' DO NOTHING
	RETURNING id, account_id, conversation_id, wa_message_id, direction, body, created_at`

const touchConversationQuery = `
	UPDATE conversations SET last_message_at = $3, updated_at = now()
	WHERE id = $1 AND account_id = $2`

// InsertMessage appends a message and advances the conversation's
// last_message_at. Redelivered wire message ids are dropped and reported via
// the duplicate flag.
func (r *Repository) InsertMessage(ctx context.Context, params InsertMessageParams) (Message, bool, error) {
	row := r.pool.QueryRow(ctx, insertMessageQuery,
		params.AccountID, params.ConversationID, params.WaMessageID,
		params.Direction, params.Body, params.CreatedAt)

	var m Message
	err := row.Scan(&m.ID, &m.AccountID, &m.ConversationID, &m.WaMessageID, &m.Direction, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, true, nil
	}
	if err != nil {
		return Message{}, false, err
	}

	_, err = r.pool.Exec(ctx, touchConversationQuery, params.ConversationID, params.AccountID, params.CreatedAt)
	return m, false, err
}

const latestInboundQuery = `
	SELECT id, account_id, conversation_id, wa_message_id, direction, body, created_at
	FROM messages
	WHERE conversation_id = $1 AND account_id = $2 AND direction = 'inbound'
	ORDER BY created_at DESC
	LIMIT 1`

// LatestInbound returns the most recent inbound message, or nil when the
// conversation has none.
func (r *Repository) LatestInbound(ctx context.Context, conversationID, accountID uuid.UUID) (*Message, error) {
	row := r.pool.QueryRow(ctx, latestInboundQuery, conversationID, accountID)

	var m Message
	err := row.Scan(&m.ID, &m.AccountID, &m.ConversationID, &m.WaMessageID, &m.Direction, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const listMessagesQuery = `
	SELECT id, account_id, conversation_id, wa_message_id, direction, body, created_at
	FROM messages
	WHERE conversation_id = $1 AND account_id = $2
	ORDER BY created_at`

func (r *Repository) ListMessages(ctx context.Context, conversationID, accountID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, listMessagesQuery, conversationID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.AccountID, &m.ConversationID, &m.WaMessageID, &m.Direction, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
