package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"whatsapp_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Stats is the tenant-wide lead aggregate.
type Stats struct {
	Total        int64 `json:"total"`
	New          int64 `json:"new"`
	Contacted    int64 `json:"contacted"`
	Qualified    int64 `json:"qualified"`
	Negotiating  int64 `json:"negotiating"`
	Converted    int64 `json:"converted"`
	Lost         int64 `json:"lost"`
	Stale        int64 `json:"stale"`
	AverageScore int   `json:"averageScore"`
}

const statsQuery = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'new'),
		COUNT(*) FILTER (WHERE status = 'contacted'),
		COUNT(*) FILTER (WHERE status = 'qualified'),
		COUNT(*) FILTER (WHERE status = 'negotiating'),
		COUNT(*) FILTER (WHERE status = 'converted'),
		COUNT(*) FILTER (WHERE status = 'lost'),
		COUNT(*) FILTER (WHERE status = 'stale'),
		COALESCE(AVG(score), 0)
	FROM leads
	WHERE account_id = $1`

// GetStats returns total, per-status counts, and the average score rounded
// to the nearest integer (0 when the tenant has no leads).
func (r *Repository) GetStats(ctx context.Context, accountID uuid.UUID) (Stats, error) {
	var stats Stats
	var avg float64
	err := r.pool.QueryRow(ctx, statsQuery, accountID).Scan(
		&stats.Total, &stats.New, &stats.Contacted, &stats.Qualified,
		&stats.Negotiating, &stats.Converted, &stats.Lost, &stats.Stale,
		&avg,
	)
	if err != nil {
		return Stats{}, err
	}
	stats.AverageScore = int(math.Round(avg))
	return stats, nil
}

// markStaleBatchQuery transitions one batch of inactive early-pipeline leads
// to stale. Batching keeps lock times bounded on large tenants; SKIP LOCKED
// lets a concurrent sweep pass over rows another batch is touching.
const markStaleBatchQuery = `
	WITH candidates AS (
		SELECT id FROM leads
		WHERE account_id = $1
		  AND status = ANY($2)
		  AND last_message < $3
		ORDER BY last_message
		LIMIT $4
		FOR UPDATE SKIP LOCKED
	)
	UPDATE leads SET status = 'stale', updated_at = now()
	WHERE id IN (SELECT id FROM candidates)`

// MarkStaleBatch marks up to limit stale candidates for one tenant and
// returns the number of rows transitioned.
func (r *Repository) MarkStaleBatch(ctx context.Context, accountID uuid.UUID, cutoff time.Time, limit int) (int64, error) {
	tag, err := r.pool.Exec(ctx, markStaleBatchQuery,
		accountID, statusStrings(domain.SweepableStatuses()), cutoff, limit)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const accountsWithSweepableLeadsQuery = `
	SELECT DISTINCT account_id FROM leads
	WHERE status = ANY($1) AND last_message < $2`

// ListAccountsWithSweepableLeads returns every tenant holding at least one
// stale candidate. The scheduler iterates these so each sweep stays
// tenant-scoped.
func (r *Repository) ListAccountsWithSweepableLeads(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, accountsWithSweepableLeadsQuery,
		statusStrings(domain.SweepableStatuses()), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		accounts = append(accounts, id)
	}
	return accounts, rows.Err()
}

// ExportRow is the fixed CSV projection of a lead.
type ExportRow struct {
	Name         string
	Email        string
	Phone        string
	Company      string
	Intent       domain.Intent
	Score        int
	Status       domain.Status
	MessageCount int
	CreatedAt    time.Time
}

const exportRowsBaseQuery = `
	SELECT name, email, phone, company, intent, score, status, message_count, created_at
	FROM leads
	WHERE account_id = $1`

// ListExportRows returns the tenant's leads projected for CSV export,
// optionally filtered by status and intent, newest-created first.
func (r *Repository) ListExportRows(ctx context.Context, accountID uuid.UUID, status *domain.Status, intent *domain.Intent) ([]ExportRow, error) {
	query := exportRowsBaseQuery
	args := []any{accountID}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if intent != nil {
		args = append(args, *intent)
		query += fmt.Sprintf(" AND intent = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExportRow, 0)
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(&row.Name, &row.Email, &row.Phone, &row.Company,
			&row.Intent, &row.Score, &row.Status, &row.MessageCount, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
