package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

type stubLookup struct {
	accounts map[string]*model.Account
}

func (s *stubLookup) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	return s.accounts[email], nil
}

func TestGateResolvesAccount(t *testing.T) {
	svc, _ := fixedClock(t, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	lookup := &stubLookup{accounts: map[string]*model.Account{
		"user@example.com": {ID: 7, Email: "user@example.com", Confirmed: true},
	}}
	gate := NewGate(svc, lookup)

	token, err := svc.IssueAccess("user@example.com", 0)
	require.NoError(t, err)

	acc, err := gate.CurrentAccount(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), acc.ID)
}

func TestGateCollapsesFailures(t *testing.T) {
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, now := fixedClock(t, base)
	lookup := &stubLookup{accounts: map[string]*model.Account{
		"user@example.com": {ID: 7, Email: "user@example.com"},
	}}
	gate := NewGate(svc, lookup)

	// Wrong scope, expired, malformed and unknown subject all surface as
	// the same ErrUnauthorized.
	refresh, err := svc.IssueRefresh("user@example.com", 0)
	require.NoError(t, err)
	_, err = gate.CurrentAccount(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = gate.CurrentAccount(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	ghost, err := svc.IssueAccess("ghost@example.com", 0)
	require.NoError(t, err)
	_, err = gate.CurrentAccount(context.Background(), ghost)
	assert.ErrorIs(t, err, ErrUnauthorized)

	short, err := svc.IssueAccess("user@example.com", time.Minute)
	require.NoError(t, err)
	*now = base.Add(2 * time.Minute)
	_, err = gate.CurrentAccount(context.Background(), short)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
