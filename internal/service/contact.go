package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// ContactStore is the contact persistence contract. Every method that
// touches a row takes the owning account id; the store guarantees that a
// contact outside that account behaves exactly like a missing one.
type ContactStore interface {
	FindByIDAndOwner(ctx context.Context, id, accountID uint64) (*model.Contact, error)
	ListByOwner(ctx context.Context, accountID uint64, skip, limit int) ([]*model.Contact, error)
	AllByOwner(ctx context.Context, accountID uint64) ([]*model.Contact, error)
	Insert(ctx context.Context, c *model.Contact) error
	Save(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id, accountID uint64) error
}

// ContactInput carries the writable fields of a contact. Field
// constraints (name/phone/description lengths, email format) are
// enforced at the HTTP boundary before a ContactInput is built.
type ContactInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	BirthDate   time.Time
	Description string
}

// ContactService exposes the ownership-scoped contact operations. It
// holds no per-request state; the account resolved by the auth gate is an
// explicit argument everywhere.
type ContactService struct {
	contacts ContactStore
	now      func() time.Time
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{contacts: contacts, now: time.Now}
}

// List returns a window of the account's contacts in id order.
func (s *ContactService) List(ctx context.Context, acc *model.Account, skip, limit int) ([]*model.Contact, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return s.contacts.ListByOwner(ctx, acc.ID, skip, limit)
}

// Get returns the contact or nil when it does not exist or belongs to a
// different account. Absence is not an error; the route layer picks the
// status code.
func (s *ContactService) Get(ctx context.Context, acc *model.Account, id uint64) (*model.Contact, error) {
	return s.contacts.FindByIDAndOwner(ctx, id, acc.ID)
}

// Create persists a new contact owned by the account.
func (s *ContactService) Create(ctx context.Context, acc *model.Account, in ContactInput) (*model.Contact, error) {
	c := &model.Contact{
		AccountID:   acc.ID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		BirthDate:   in.BirthDate,
		Description: in.Description,
	}
	if err := s.contacts.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces every field of the contact (no merge). It returns nil
// when the contact is missing or owned by someone else.
func (s *ContactService) Update(ctx context.Context, acc *model.Account, id uint64, in ContactInput) (*model.Contact, error) {
	c := &model.Contact{
		ID:          id,
		AccountID:   acc.ID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		BirthDate:   in.BirthDate,
		Description: in.Description,
	}
	if err := s.contacts.Save(ctx, c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Remove deletes the contact and returns its last snapshot, or nil when
// nothing owned by the account matched.
func (s *ContactService) Remove(ctx context.Context, acc *model.Account, id uint64) (*model.Contact, error) {
	c, err := s.contacts.FindByIDAndOwner(ctx, id, acc.ID)
	if err != nil || c == nil {
		return nil, err
	}
	if err := s.contacts.Delete(ctx, id, acc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Search returns the account's contacts whose first name, last name or
// email contains the needle, case-insensitively. Contacts appear in id
// order and at most once even when several fields match.
func (s *ContactService) Search(ctx context.Context, acc *model.Account, needle string) ([]*model.Contact, error) {
	all, err := s.contacts.AllByOwner(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	needle = strings.ToLower(needle)
	out := make([]*model.Contact, 0)
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.FirstName), needle) ||
			strings.Contains(strings.ToLower(c.LastName), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpcomingBirthdays returns contacts whose birthday, re-anchored onto the
// current year, falls within the next windowDays days. Birthdays earlier
// in the year than today yield a negative delta and are excluded; a
// window crossing Dec 31 into January misses the January birthdays. This
// matches the documented behaviour and is a known limitation.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, acc *model.Account, windowDays int) ([]*model.Contact, error) {
	all, err := s.contacts.AllByOwner(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]*model.Contact, 0)
	for _, c := range all {
		anniversary := time.Date(now.Year(), c.BirthDate.Month(), c.BirthDate.Day(), 0, 0, 0, 0, time.UTC)
		delta := int(anniversary.Sub(today).Hours() / 24)
		if delta >= 0 && delta <= windowDays {
			out = append(out, c)
		}
	}
	return out, nil
}
