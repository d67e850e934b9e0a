package webhook

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPhoneNumberNotFound = errors.New("phone number not registered")

// PhoneNumber maps a wire phone_number_id to the tenant that owns it.
// Tenant resolution for webhook deliveries goes through this table; nothing
// in the payload itself is trusted to name an account.
type PhoneNumber struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	WaNumberID    string
	DisplayNumber string
}

// Repository resolves tenant phone numbers for webhook intake.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const getPhoneNumberQuery = `
	SELECT id, account_id, wa_number_id, display_number
	FROM phone_numbers
	WHERE wa_number_id = $1`

func (r *Repository) GetByWaNumberID(ctx context.Context, waNumberID string) (PhoneNumber, error) {
	var pn PhoneNumber
	err := r.pool.QueryRow(ctx, getPhoneNumberQuery, waNumberID).
		Scan(&pn.ID, &pn.AccountID, &pn.WaNumberID, &pn.DisplayNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return PhoneNumber{}, ErrPhoneNumberNotFound
	}
	return pn, err
}
