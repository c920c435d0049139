package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// fakeAccountStore keeps accounts in memory, keyed by email, with the
// same absence semantics as the MySQL repository.
type fakeAccountStore struct {
	mu       sync.Mutex
	nextID   uint64
	accounts map[string]*model.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*model.Account{}}
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) Insert(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now()
	cp := *a
	f.accounts[a.Email] = &cp
	return nil
}

func (f *fakeAccountStore) SaveRefreshToken(_ context.Context, accountID uint64, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == accountID {
			a.RefreshToken = token
		}
	}
	return nil
}

func (f *fakeAccountStore) MarkConfirmed(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[email]; ok {
		a.Confirmed = true
	}
	return nil
}

func (f *fakeAccountStore) SaveAvatar(_ context.Context, email, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[email]; ok {
		a.Avatar = &url
	}
	return nil
}

// stubHasher is deterministic and reversible enough for assertions while
// still requiring the original password to verify.
type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (stubHasher) Verify(hash, plain string) bool    { return hash == "hashed:"+plain }

// capturePublisher records published confirmations.
type capturePublisher struct {
	mu     sync.Mutex
	tokens []string
	emails []string
}

func (p *capturePublisher) PublishConfirmation(_ context.Context, email, _, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emails = append(p.emails, email)
	p.tokens = append(p.tokens, token)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}

func (p *capturePublisher) lastToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens[len(p.tokens)-1]
}

type stubAvatars struct {
	url string
	err error
}

func (s stubAvatars) Lookup(context.Context, string) (string, error) { return s.url, s.err }

func newAccountService(store *fakeAccountStore, pub EmailPublisher, avatars AvatarSource) *AccountService {
	tokens := auth.NewTokenService("test-secret")
	return NewAccountService(store, tokens, stubHasher{}, pub, avatars, 0)
}

func TestSignupCreatesUnconfirmedAccount(t *testing.T) {
	store := newFakeAccountStore()
	pub := &capturePublisher{}
	svc := newAccountService(store, pub, stubAvatars{url: "https://gravatar.test/abc"})

	acc, err := svc.Signup(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, acc.Confirmed)
	assert.Equal(t, "hashed:secret1", acc.PasswordHash)
	require.NotNil(t, acc.Avatar)
	assert.Equal(t, "https://gravatar.test/abc", *acc.Avatar)

	// The confirmation email is scheduled off the request path.
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newFakeAccountStore()
	svc := newAccountService(store, nil, nil)

	_, err := svc.Signup(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Signup(context.Background(), "alice2", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignupSurvivesAvatarFailure(t *testing.T) {
	store := newFakeAccountStore()
	svc := newAccountService(store, nil, stubAvatars{err: assert.AnError})

	acc, err := svc.Signup(context.Background(), "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, acc.Avatar)
}

func TestLoginPreconditions(t *testing.T) {
	store := newFakeAccountStore()
	pub := &capturePublisher{}
	svc := newAccountService(store, pub, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	// Unconfirmed accounts cannot log in.
	_, err = svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	require.NoError(t, store.MarkConfirmed(ctx, "alice@example.com"))

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	pair, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	// The issued refresh token is the stored one.
	acc, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, acc.RefreshToken)
	assert.Equal(t, pair.Refresh, *acc.RefreshToken)
}

func TestConfirmEmailIsIdempotent(t *testing.T) {
	store := newFakeAccountStore()
	pub := &capturePublisher{}
	svc := newAccountService(store, pub, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
	token := pub.lastToken()

	already, err := svc.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	assert.False(t, already)

	acc, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, acc.Confirmed)

	// Second confirmation with the same token is a no-op success.
	already, err = svc.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestConfirmEmailRejectsBadTokens(t *testing.T) {
	store := newFakeAccountStore()
	svc := newAccountService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.ConfirmEmail(ctx, "garbage")
	assert.ErrorIs(t, err, ErrVerification)

	// A well-formed token whose subject has no account is a verification error.
	tokens := auth.NewTokenService("test-secret")
	ghost, err := tokens.IssueEmail("ghost@example.com")
	require.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, ghost)
	assert.ErrorIs(t, err, ErrVerification)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	store := newFakeAccountStore()
	svc := newAccountService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, store.MarkConfirmed(ctx, "alice@example.com"))

	first, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, first.Refresh, second.Refresh)

	// The rotated-out token no longer matches the stored one; presenting
	// it clears the session entirely.
	_, err = svc.Refresh(ctx, first.Refresh)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	acc, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, acc.RefreshToken)

	// Even the previously valid current token is now dead.
	_, err = svc.Refresh(ctx, second.Refresh)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshRejectsForeignTokens(t *testing.T) {
	store := newFakeAccountStore()
	svc := newAccountService(store, nil, nil)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// Access tokens are not refresh tokens.
	tokens := auth.NewTokenService("test-secret")
	access, err := tokens.IssueAccess("alice@example.com", 0)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRequestConfirmation(t *testing.T) {
	store := newFakeAccountStore()
	pub := &capturePublisher{}
	svc := newAccountService(store, pub, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)

	// Unknown email: generic outcome, nothing published.
	already, err := svc.RequestConfirmation(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, already)

	// Known unconfirmed email: another message goes out.
	already, err = svc.RequestConfirmation(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 10*time.Millisecond)

	// Confirmed accounts short-circuit.
	require.NoError(t, store.MarkConfirmed(ctx, "alice@example.com"))
	already, err = svc.RequestConfirmation(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, already)
}
