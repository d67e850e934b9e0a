// Package repository provides data access for the leads bounded context.
// Every query is scoped by account_id: the tenant filter is the sole
// isolation mechanism, omitting it is a cross-tenant data leak.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whatsapp_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("lead not found")
	ErrDuplicate = errors.New("lead already exists for conversation and contact")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the persistent lead record.
type Lead struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	ConversationID  uuid.UUID
	ContactID       uuid.UUID
	PhoneNumberID   uuid.UUID
	Name            string
	Email           string
	Phone           string
	Company         string
	Intent          domain.Intent
	IntentLocked    bool
	Keywords        []string
	MessageCount    int
	FirstMessage    time.Time
	LastMessage     time.Time
	Score           int
	Breakdown       domain.ScoreBreakdown
	Status          domain.Status
	AssignedTo      *uuid.UUID
	Notes           string
	Tags            []string
	NextFollowUp    *time.Time
	FollowUpCount   int
	LastFollowUp    *time.Time
	ConvertedAt     *time.Time
	ConversionValue *float64
	SourceMessage   string
	Metadata        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot extracts the fields the score engine reads.
func (l Lead) Snapshot() domain.ScoreSnapshot {
	return domain.ScoreSnapshot{
		MessageCount: l.MessageCount,
		Intent:       l.Intent,
		LastMessage:  l.LastMessage,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Company:      l.Company,
	}
}

// LeadDetail is a lead with related-record projections for the detail view.
type LeadDetail struct {
	Lead
	ContactName   *string
	ContactEmail  *string
	AssigneeName  *string
	AssigneeEmail *string
}

const leadColumns = `id, account_id, conversation_id, contact_id, phone_number_id,
	name, email, phone, company,
	intent, intent_locked, keywords, message_count, first_message, last_message,
	score, engagement_score, intent_score, recency_score, completion_score,
	status, assigned_to, notes, tags,
	next_follow_up, follow_up_count, last_follow_up,
	converted_at, conversion_value, source_message, metadata, created_at, updated_at`

type leadRow interface {
	Scan(dest ...any) error
}

func scanLead(row leadRow) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.AccountID, &lead.ConversationID, &lead.ContactID, &lead.PhoneNumberID,
		&lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Intent, &lead.IntentLocked, &lead.Keywords, &lead.MessageCount, &lead.FirstMessage, &lead.LastMessage,
		&lead.Score, &lead.Breakdown.Engagement, &lead.Breakdown.Intent, &lead.Breakdown.Recency, &lead.Breakdown.Completion,
		&lead.Status, &lead.AssignedTo, &lead.Notes, &lead.Tags,
		&lead.NextFollowUp, &lead.FollowUpCount, &lead.LastFollowUp,
		&lead.ConvertedAt, &lead.ConversionValue, &lead.SourceMessage, &lead.Metadata, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// CreateLeadParams are the fields for a manual lead creation.
type CreateLeadParams struct {
	AccountID      uuid.UUID
	ConversationID uuid.UUID
	ContactID      uuid.UUID
	PhoneNumberID  uuid.UUID
	Name           string
	Email          string
	Phone          string
	Company        string
	Intent         domain.Intent
	IntentLocked   bool
	Keywords       []string
	Notes          string
	SourceMessage  string
	Metadata       map[string]any
	Score          int
	Breakdown      domain.ScoreBreakdown
	Now            time.Time
}

const createLeadQuery = `
	INSERT INTO leads (
		account_id, conversation_id, contact_id, phone_number_id,
		name, email, phone, company,
		intent, intent_locked, keywords, message_count, first_message, last_message,
		score, engagement_score, intent_score, recency_score, completion_score,
		notes, source_message, metadata
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	RETURNING ` + leadColumns

// Create inserts a manually created lead. Returns ErrDuplicate when a lead
// already exists for the (account, conversation, contact) triple.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, createLeadQuery,
		params.AccountID, params.ConversationID, params.ContactID, params.PhoneNumberID,
		params.Name, params.Email, params.Phone, params.Company,
		params.Intent, params.IntentLocked, keywordsOrEmpty(params.Keywords), params.Now,
		params.Score, params.Breakdown.Engagement, params.Breakdown.Intent, params.Breakdown.Recency, params.Breakdown.Completion,
		params.Notes, params.SourceMessage, metadataOrEmpty(params.Metadata),
	)

	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lead{}, ErrDuplicate
		}
		return Lead{}, err
	}
	return lead, nil
}

const getLeadByIDQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE id = $1 AND account_id = $2`

func (r *Repository) GetByID(ctx context.Context, id, accountID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadByIDQuery, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

const getLeadDetailQuery = `
	SELECT l.id, l.account_id, l.conversation_id, l.contact_id, l.phone_number_id,
		l.name, l.email, l.phone, l.company,
		l.intent, l.intent_locked, l.keywords, l.message_count, l.first_message, l.last_message,
		l.score, l.engagement_score, l.intent_score, l.recency_score, l.completion_score,
		l.status, l.assigned_to, l.notes, l.tags,
		l.next_follow_up, l.follow_up_count, l.last_follow_up,
		l.converted_at, l.conversion_value, l.source_message, l.metadata, l.created_at, l.updated_at,
		c.name, c.email, u.name, u.email
	FROM leads l
	LEFT JOIN contacts c ON c.id = l.contact_id AND c.account_id = l.account_id
	LEFT JOIN users u ON u.id = l.assigned_to AND u.account_id = l.account_id
	WHERE l.id = $1 AND l.account_id = $2`

// GetDetail returns a lead with live contact and assignee projections.
func (r *Repository) GetDetail(ctx context.Context, id, accountID uuid.UUID) (LeadDetail, error) {
	var detail LeadDetail
	lead := &detail.Lead
	err := r.pool.QueryRow(ctx, getLeadDetailQuery, id, accountID).Scan(
		&lead.ID, &lead.AccountID, &lead.ConversationID, &lead.ContactID, &lead.PhoneNumberID,
		&lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Intent, &lead.IntentLocked, &lead.Keywords, &lead.MessageCount, &lead.FirstMessage, &lead.LastMessage,
		&lead.Score, &lead.Breakdown.Engagement, &lead.Breakdown.Intent, &lead.Breakdown.Recency, &lead.Breakdown.Completion,
		&lead.Status, &lead.AssignedTo, &lead.Notes, &lead.Tags,
		&lead.NextFollowUp, &lead.FollowUpCount, &lead.LastFollowUp,
		&lead.ConvertedAt, &lead.ConversionValue, &lead.SourceMessage, &lead.Metadata, &lead.CreatedAt, &lead.UpdatedAt,
		&detail.ContactName, &detail.ContactEmail, &detail.AssigneeName, &detail.AssigneeEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadDetail{}, ErrNotFound
	}
	return detail, err
}

// ListFilter narrows the tenant's lead listing.
type ListFilter struct {
	Status   *domain.Status
	Intent   *domain.Intent
	MinScore *int
	Search   string
}

const listLeadsBaseQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE account_id = $1`

// List returns the tenant's leads matching the filter, newest-created first.
func (r *Repository) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Lead, error) {
	query := listLeadsBaseQuery
	args := []any{accountID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Intent != nil {
		args = append(args, *filter.Intent)
		query += fmt.Sprintf(" AND intent = $%d", len(args))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		query += fmt.Sprintf(" AND score >= $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR company ILIKE $%d)", n, n, n, n)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// UpdateParams carries the full mutable field set persisted on update.
// The service recomputes the score before every call, so the stored score is
// always the engine's output for the current field values.
type UpdateParams struct {
	Name            string
	Email           string
	Phone           string
	Company         string
	Status          domain.Status
	AssignedTo      *uuid.UUID
	Notes           string
	Tags            []string
	NextFollowUp    *time.Time
	FollowUpCount   int
	LastFollowUp    *time.Time
	ConvertedAt     *time.Time
	ConversionValue *float64
	Metadata        map[string]any
	Score           int
	Breakdown       domain.ScoreBreakdown
}

const updateLeadQuery = `
	UPDATE leads SET
		name = $3, email = $4, phone = $5, company = $6,
		status = $7, assigned_to = $8, notes = $9, tags = $10,
		next_follow_up = $11, follow_up_count = $12, last_follow_up = $13,
		converted_at = $14, conversion_value = $15, metadata = $16,
		score = $17, engagement_score = $18, intent_score = $19, recency_score = $20, completion_score = $21,
		updated_at = now()
	WHERE id = $1 AND account_id = $2
	RETURNING ` + leadColumns

func (r *Repository) Update(ctx context.Context, id, accountID uuid.UUID, params UpdateParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, updateLeadQuery,
		id, accountID,
		params.Name, params.Email, params.Phone, params.Company,
		params.Status, params.AssignedTo, params.Notes, keywordsOrEmpty(params.Tags),
		params.NextFollowUp, params.FollowUpCount, params.LastFollowUp,
		params.ConvertedAt, params.ConversionValue, metadataOrEmpty(params.Metadata),
		params.Score, params.Breakdown.Engagement, params.Breakdown.Intent, params.Breakdown.Recency, params.Breakdown.Completion,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

const deleteLeadQuery = `DELETE FROM leads WHERE id = $1 AND account_id = $2`

func (r *Repository) Delete(ctx context.Context, id, accountID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteLeadQuery, id, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func keywordsOrEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
