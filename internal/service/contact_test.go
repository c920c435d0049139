package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// fakeContactStore mirrors the repository contract: every lookup is keyed
// by owner, and a foreign contact is indistinguishable from a missing one.
type fakeContactStore struct {
	nextID   uint64
	contacts map[uint64]*model.Contact
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: map[uint64]*model.Contact{}}
}

func (f *fakeContactStore) FindByIDAndOwner(_ context.Context, id, accountID uint64) (*model.Contact, error) {
	c, ok := f.contacts[id]
	if !ok || c.AccountID != accountID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContactStore) ListByOwner(ctx context.Context, accountID uint64, skip, limit int) ([]*model.Contact, error) {
	all, _ := f.AllByOwner(ctx, accountID)
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeContactStore) AllByOwner(_ context.Context, accountID uint64) ([]*model.Contact, error) {
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.AccountID == accountID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeContactStore) Insert(_ context.Context, c *model.Contact) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeContactStore) Save(_ context.Context, c *model.Contact) error {
	cur, ok := f.contacts[c.ID]
	if !ok || cur.AccountID != c.AccountID {
		return sql.ErrNoRows
	}
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeContactStore) Delete(_ context.Context, id, accountID uint64) error {
	cur, ok := f.contacts[id]
	if !ok || cur.AccountID != accountID {
		return sql.ErrNoRows
	}
	delete(f.contacts, id)
	return nil
}

var (
	accountA = &model.Account{ID: 1, Email: "a@example.com"}
	accountB = &model.Account{ID: 2, Email: "b@example.com"}
)

func seedContact(t *testing.T, svc *ContactService, acc *model.Account, first, last, email string, birth time.Time) *model.Contact {
	t.Helper()
	c, err := svc.Create(context.Background(), acc, ContactInput{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		Phone:       "0987654321",
		BirthDate:   birth,
		Description: "seeded",
	})
	require.NoError(t, err)
	return c
}

func TestOwnershipIsolation(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	ctx := context.Background()
	birth := time.Date(1988, 3, 25, 0, 0, 0, 0, time.UTC)

	mine := seedContact(t, svc, accountA, "User", "Example", "example@gmail.com", birth)
	theirs := seedContact(t, svc, accountB, "Other", "Person", "other@gmail.com", birth)

	// B can never see, rewrite or delete A's contact.
	got, err := svc.Get(ctx, accountB, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	updated, err := svc.Update(ctx, accountB, mine.ID, ContactInput{
		FirstName: "Hacked", LastName: "Hacked", Email: "x@x.com", Phone: "0000000000", BirthDate: birth, Description: "nope",
	})
	require.NoError(t, err)
	assert.Nil(t, updated)

	removed, err := svc.Remove(ctx, accountB, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)

	// A's contact is untouched and still visible to A.
	got, err = svc.Get(ctx, accountA, mine.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "User", got.FirstName)

	// And the scoping is symmetric.
	got, err = svc.Get(ctx, accountA, theirs.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListWindow(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	ctx := context.Background()
	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedContact(t, svc, accountA, "Name", "Surname", "c@example.com", birth)
	}

	page, err := svc.List(ctx, accountA, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].ID)
	assert.Equal(t, uint64(3), page[1].ID)

	// Out-of-range windows are empty, never an error.
	page, err = svc.List(ctx, accountA, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	ctx := context.Background()
	birth := time.Date(1988, 3, 25, 0, 0, 0, 0, time.UTC)

	c := seedContact(t, svc, accountA, "User", "Example", "example@gmail.com", birth)

	newBirth := time.Date(1991, 7, 2, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, accountA, c.ID, ContactInput{
		FirstName:   "Renamed",
		LastName:    "Contact",
		Email:       "renamed@gmail.com",
		Phone:       "1112223334",
		BirthDate:   newBirth,
		Description: "fully replaced",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	got, err := svc.Get(ctx, accountA, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FirstName)
	assert.Equal(t, "fully replaced", got.Description)
	assert.True(t, got.BirthDate.Equal(newBirth))
}

func TestRemoveReturnsSnapshot(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	ctx := context.Background()
	birth := time.Date(1988, 3, 25, 0, 0, 0, 0, time.UTC)

	c := seedContact(t, svc, accountA, "User", "Example", "example@gmail.com", birth)

	removed, err := svc.Remove(ctx, accountA, c.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "example@gmail.com", removed.Email)

	got, err := svc.Get(ctx, accountA, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchMatchesOnceAcrossFields(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	ctx := context.Background()
	birth := time.Date(1988, 3, 25, 0, 0, 0, 0, time.UTC)

	seedContact(t, svc, accountA, "User", "Example", "example@gmail.com", birth)
	seedContact(t, svc, accountA, "User1", "Example1", "example1@gmail.com", birth)
	seedContact(t, svc, accountA, "User2", "Example2", "example2@gmail.com", birth)
	// Another account's contact must never leak into results.
	seedContact(t, svc, accountB, "User", "Example", "example1@gmail.com", birth)

	got, err := svc.Search(ctx, accountA, "example1@gmail.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "example1@gmail.com", got[0].Email)
	assert.Equal(t, accountA.ID, got[0].AccountID)

	// Case-insensitive and matching several fields still yields each
	// contact exactly once.
	got, err = svc.Search(ctx, accountA, "USER1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.Search(ctx, accountA, "example")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUpcomingBirthdaysWindow(t *testing.T) {
	svc := NewContactService(newFakeContactStore())
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	birthOn := func(daysAhead int) time.Time {
		d := now.AddDate(0, 0, daysAhead)
		return time.Date(1990, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	seedContact(t, svc, accountA, "In1", "Day", "in1@example.com", birthOn(1))
	seedContact(t, svc, accountA, "In3", "Days", "in3@example.com", birthOn(3))
	seedContact(t, svc, accountA, "In8", "Days", "in8@example.com", birthOn(8))
	// A birthday that already passed this year is excluded, not wrapped.
	seedContact(t, svc, accountA, "Past", "Days", "past@example.com", birthOn(-2))

	got, err := svc.UpcomingBirthdays(ctx, accountA, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "in1@example.com", got[0].Email)
	assert.Equal(t, "in3@example.com", got[1].Email)

	// A birthday today counts as delta zero.
	seedContact(t, svc, accountA, "Today", "Now", "today@example.com", birthOn(0))
	got, err = svc.UpcomingBirthdays(ctx, accountA, 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
