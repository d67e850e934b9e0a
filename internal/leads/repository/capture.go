package repository

import (
	"context"
	"time"

	"whatsapp_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// CaptureUpsertParams is one capture event's contribution to a lead.
type CaptureUpsertParams struct {
	AccountID      uuid.UUID
	ConversationID uuid.UUID
	ContactID      uuid.UUID
	PhoneNumberID  uuid.UUID
	Name           string
	Email          string
	Phone          string
	Company        string
	Intent         domain.Intent
	Keywords       []string
	SourceMessage  string
	Now            time.Time
}

// captureUpsertQuery merges a capture event atomically. The composite unique
// index on (account_id, conversation_id, contact_id) closes the race between
// two concurrent captures for the same conversation: the conflict branch
// increments message_count, unions keywords, applies the sticky-intent rule
// via intent_locked, and refreshes last_message/source_message. Contact
// snapshot fields keep their create-time values on conflict.
// (xmax = 0) distinguishes freshly inserted rows from merged ones.
const captureUpsertQuery = `
	INSERT INTO leads (
		account_id, conversation_id, contact_id, phone_number_id,
		name, email, phone, company,
		intent, intent_locked, keywords, message_count, first_message, last_message,
		source_message
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $12, $13)
	ON CONFLICT (account_id, conversation_id, contact_id) DO UPDATE SET
		message_count = leads.message_count + 1,
		last_message = EXCLUDED.last_message,
		source_message = EXCLUDED.source_message,
		intent = CASE WHEN leads.intent_locked THEN leads.intent ELSE EXCLUDED.intent END,
		intent_locked = leads.intent_locked OR EXCLUDED.intent_locked,
		keywords = ARRAY(
			SELECT DISTINCT kw
			FROM unnest(leads.keywords || EXCLUDED.keywords) AS kw
			ORDER BY kw
		),
		updated_at = now()
	RETURNING ` + leadColumns + `, (xmax = 0) AS inserted`

const updateScoreQuery = `
	UPDATE leads SET
		score = $3, engagement_score = $4, intent_score = $5, recency_score = $6, completion_score = $7,
		updated_at = now()
	WHERE id = $1 AND account_id = $2`

// ScoreFunc computes the score and breakdown for the merged lead state.
type ScoreFunc func(Lead) (int, domain.ScoreBreakdown)

// CaptureUpsert creates or merges the lead for a capture event, scores the
// merged state via score, and persists both in one transaction, so a lead
// row never commits without the score derived from it. Reports whether the
// row was newly created.
func (r *Repository) CaptureUpsert(ctx context.Context, params CaptureUpsertParams, score ScoreFunc) (Lead, bool, error) {
	intentLocked := params.Intent != domain.DefaultIntent

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, captureUpsertQuery,
		params.AccountID, params.ConversationID, params.ContactID, params.PhoneNumberID,
		params.Name, params.Email, params.Phone, params.Company,
		params.Intent, intentLocked, keywordsOrEmpty(params.Keywords), params.Now,
		params.SourceMessage,
	)

	var lead Lead
	var inserted bool
	err = row.Scan(
		&lead.ID, &lead.AccountID, &lead.ConversationID, &lead.ContactID, &lead.PhoneNumberID,
		&lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Intent, &lead.IntentLocked, &lead.Keywords, &lead.MessageCount, &lead.FirstMessage, &lead.LastMessage,
		&lead.Score, &lead.Breakdown.Engagement, &lead.Breakdown.Intent, &lead.Breakdown.Recency, &lead.Breakdown.Completion,
		&lead.Status, &lead.AssignedTo, &lead.Notes, &lead.Tags,
		&lead.NextFollowUp, &lead.FollowUpCount, &lead.LastFollowUp,
		&lead.ConvertedAt, &lead.ConversionValue, &lead.SourceMessage, &lead.Metadata, &lead.CreatedAt, &lead.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return Lead{}, false, err
	}

	total, bd := score(lead)
	if _, err = tx.Exec(ctx, updateScoreQuery, lead.ID, lead.AccountID,
		total, bd.Engagement, bd.Intent, bd.Recency, bd.Completion); err != nil {
		return Lead{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, false, err
	}

	lead.Score = total
	lead.Breakdown = bd
	return lead, inserted, nil
}
