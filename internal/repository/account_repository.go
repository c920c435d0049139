package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// AccountRepo encapsulates all queries against the `accounts` table. It
// is the credential store: lookups by email, inserts at signup, and the
// single-row mutations the token lifecycle needs (refresh token,
// confirmed flag, avatar URL).
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// FindByEmail fetches an account by normalized email. Absence is
// (nil, nil), not an error; callers decide whether a missing account is a
// problem.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		a       model.Account
		avatar  sql.NullString
		refresh sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,confirmed,avatar,refresh_token,created_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Confirmed, &avatar, &refresh, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if avatar.Valid {
		a.Avatar = &avatar.String
	}
	if refresh.Valid {
		a.RefreshToken = &refresh.String
	}
	return &a, nil
}

// Insert creates the account row and fills ID and CreatedAt on the passed
// struct. Duplicate emails surface as ErrEmailExists.
func (r *AccountRepo) Insert(ctx context.Context, a *model.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	var avatar sql.NullString
	if a.Avatar != nil {
		avatar = sql.NullString{String: *a.Avatar, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (username, email, password_hash, avatar) VALUES (?,?,?,?)",
		a.Username, a.Email, a.PasswordHash, avatar)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	// Follow-up SELECT to populate the DB-defaulted created_at.
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM accounts WHERE id=?", a.ID).Scan(&a.CreatedAt)
}

// SaveRefreshToken overwrites the account's stored refresh token. Passing
// nil clears it, which forces a fresh login. One token per account; the
// previous value is simply replaced (last write wins under races).
func (r *AccountRepo) SaveRefreshToken(ctx context.Context, accountID uint64, token *string) error {
	var v sql.NullString
	if token != nil {
		v = sql.NullString{String: *token, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET refresh_token=? WHERE id=?", v, accountID)
	return err
}

// MarkConfirmed flips the confirmed flag for the given email. The update
// is idempotent: confirming an already confirmed account changes nothing.
func (r *AccountRepo) MarkConfirmed(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET confirmed=1 WHERE email=?",
		strings.ToLower(strings.TrimSpace(email)))
	return err
}

// SaveAvatar stores the avatar URL for the given email.
func (r *AccountRepo) SaveAvatar(ctx context.Context, email, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET avatar=? WHERE email=?",
		url, strings.ToLower(strings.TrimSpace(email)))
	return err
}
