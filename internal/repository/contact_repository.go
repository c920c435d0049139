package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

const contactColumns = "id, account_id, first_name, last_name, email, phone, birth_date, description"

// ContactRepo encapsulates all queries against the `contacts` table.
// Every statement is keyed by account_id, so a contact is only ever
// reachable through its owner: there is no unscoped read or write path.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// FindByIDAndOwner fetches a contact by id but only if it belongs to the
// given account. A missing or foreign contact is (nil, nil).
func (r *ContactRepo) FindByIDAndOwner(ctx context.Context, id, accountID uint64) (*model.Contact, error) {
	const q = "SELECT " + contactColumns + " FROM contacts WHERE id = ? AND account_id = ?"
	c, err := scanContact(r.db.QueryRowContext(ctx, q, id, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListByOwner returns a window of the account's contacts in id order.
// Out-of-range windows yield an empty slice, not an error.
func (r *ContactRepo) ListByOwner(ctx context.Context, accountID uint64, skip, limit int) ([]*model.Contact, error) {
	const q = "SELECT " + contactColumns + ` FROM contacts
	           WHERE account_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return r.queryContacts(ctx, q, accountID, limit, skip)
}

// AllByOwner returns every contact of the account in id order. Search and
// the birthday window filter in the service layer over this set.
func (r *ContactRepo) AllByOwner(ctx context.Context, accountID uint64) ([]*model.Contact, error) {
	const q = "SELECT " + contactColumns + " FROM contacts WHERE account_id = ? ORDER BY id"
	return r.queryContacts(ctx, q, accountID)
}

// Insert persists a new contact and fills its generated ID.
func (r *ContactRepo) Insert(ctx context.Context, c *model.Contact) error {
	const q = `INSERT INTO contacts (account_id, first_name, last_name, email, phone, birth_date, description)
	           VALUES (?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		c.AccountID, c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Save overwrites all mutable fields of an existing contact, constrained
// by owner. It returns sql.ErrNoRows when no row matched (missing or not
// owned).
func (r *ContactRepo) Save(ctx context.Context, c *model.Contact) error {
	const q = `UPDATE contacts
	           SET first_name = ?, last_name = ?, email = ?, phone = ?, birth_date = ?, description = ?
	           WHERE id = ? AND account_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.Description,
		c.ID, c.AccountID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a contact constrained by owner. It returns sql.ErrNoRows
// when no row matched.
func (r *ContactRepo) Delete(ctx context.Context, id, accountID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND account_id = ?", id, accountID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*model.Contact, error) {
	c := new(model.Contact)
	var desc sql.NullString
	if err := row.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.BirthDate, &desc); err != nil {
		return nil, err
	}
	c.Description = desc.String
	return c, nil
}

func (r *ContactRepo) queryContacts(ctx context.Context, q string, args ...any) ([]*model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
