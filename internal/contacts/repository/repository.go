// Package repository provides data access for the contacts bounded context.
// Every query is tenant-scoped by account_id.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("contact not found")
	ErrDuplicate = errors.New("contact already exists for this whatsapp identity")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Contact is the persistent contact record. WhatsApp holds the wire identity
// (digits only, no "+"); Phone holds the E.164 form.
type Contact struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Email     string
	Phone     string
	WhatsApp  string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const contactColumns = `id, account_id, name, email, phone, whatsapp, company, created_at, updated_at`

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.WhatsApp, &c.Company, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type CreateContactParams struct {
	AccountID uuid.UUID
	Name      string
	Email     string
	Phone     string
	WhatsApp  string
	Company   string
}

const createContactQuery = `
	INSERT INTO contacts (account_id, name, email, phone, whatsapp, company)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + contactColumns

func (r *Repository) Create(ctx context.Context, params CreateContactParams) (Contact, error) {
	row := r.pool.QueryRow(ctx, createContactQuery,
		params.AccountID, params.Name, params.Email, params.Phone, params.WhatsApp, params.Company)

	contact, err := scanContact(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Contact{}, ErrDuplicate
		}
		return Contact{}, err
	}
	return contact, nil
}

const getContactByIDQuery = `
	SELECT ` + contactColumns + `
	FROM contacts
	WHERE id = $1 AND account_id = $2`

func (r *Repository) GetByID(ctx context.Context, id, accountID uuid.UUID) (Contact, error) {
	contact, err := scanContact(r.pool.QueryRow(ctx, getContactByIDQuery, id, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return contact, err
}

// upsertByWhatsAppQuery keys on (account_id, whatsapp) so repeated webhook
// deliveries for the same sender converge on one contact. Profile fields only
// fill gaps: a value the tenant already stored is never overwritten by the
// wire payload.
const upsertByWhatsAppQuery = `
	INSERT INTO contacts (account_id, name, phone, whatsapp)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (account_id, whatsapp) DO UPDATE SET
		name = CASE WHEN contacts.name = '' THEN EXCLUDED.name ELSE contacts.name END,
		phone = CASE WHEN contacts.phone = '' THEN EXCLUDED.phone ELSE contacts.phone END,
		updated_at = now()
	RETURNING ` + contactColumns

// UpsertByWhatsApp finds or creates the contact for a WhatsApp identity.
func (r *Repository) UpsertByWhatsApp(ctx context.Context, accountID uuid.UUID, name, phone, whatsapp string) (Contact, error) {
	return scanContact(r.pool.QueryRow(ctx, upsertByWhatsAppQuery, accountID, name, phone, whatsapp))
}

const listContactsBaseQuery = `
	SELECT ` + contactColumns + `
	FROM contacts
	WHERE account_id = $1`

func (r *Repository) List(ctx context.Context, accountID uuid.UUID, search string) ([]Contact, error) {
	query := listContactsBaseQuery
	args := []any{accountID}

	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR company ILIKE $%d)", n, n, n, n)
	}
	query += " ORDER BY name, created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// UpdateParams carries the full mutable contact field set.
type UpdateParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

const updateContactQuery = `
	UPDATE contacts SET
		name = $3, email = $4, phone = $5, company = $6, updated_at = now()
	WHERE id = $1 AND account_id = $2
	RETURNING ` + contactColumns

func (r *Repository) Update(ctx context.Context, id, accountID uuid.UUID, params UpdateParams) (Contact, error) {
	row := r.pool.QueryRow(ctx, updateContactQuery,
		id, accountID, params.Name, params.Email, params.Phone, params.Company)

	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return contact, err
}

const deleteContactQuery = `DELETE FROM contacts WHERE id = $1 AND account_id = $2`

func (r *Repository) Delete(ctx context.Context, id, accountID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteContactQuery, id, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
