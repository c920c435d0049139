package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/auth"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
	"github.com/Vasyl-Hlushchenko/contacts-api/internal/repository"
)

// AccountStore is the credential store contract the lifecycle operates
// on. The MySQL AccountRepo implements it; tests use an in-memory fake.
// Find* report absence as (nil, nil).
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Insert(ctx context.Context, a *model.Account) error
	SaveRefreshToken(ctx context.Context, accountID uint64, token *string) error
	MarkConfirmed(ctx context.Context, email string) error
	SaveAvatar(ctx context.Context, email, url string) error
}

// EmailPublisher hands a confirmation message off to the outbound
// pipeline. Delivery is fire-and-forget; publish errors are logged, never
// surfaced to the HTTP caller.
type EmailPublisher interface {
	PublishConfirmation(ctx context.Context, email, username, token string) error
}

// AvatarSource resolves a default avatar URL for a new account. Failures
// are swallowed: signup succeeds without an avatar.
type AvatarSource interface {
	Lookup(ctx context.Context, email string) (string, error)
}

// Account lifecycle errors. Login deliberately reports which precondition
// failed (all three map to 401); the auth gate does not.
var (
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrInvalidRefresh    = errors.New("invalid refresh token")
	ErrVerification      = errors.New("verification error")
)

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	Access  string
	Refresh string
}

// AccountService orchestrates signup, login, token refresh and email
// confirmation over the credential store. It owns no state of its own;
// the single mutable resource is the account row.
type AccountService struct {
	accounts  AccountStore
	tokens    *auth.TokenService
	hasher    auth.Hasher
	mail      EmailPublisher
	avatars   AvatarSource
	accessTTL time.Duration
}

// NewAccountService wires the lifecycle. mail and avatars may be nil when
// the broker or avatar source is unavailable; the affected steps are then
// skipped.
func NewAccountService(accounts AccountStore, tokens *auth.TokenService, hasher auth.Hasher,
	mail EmailPublisher, avatars AvatarSource, accessTTL time.Duration) *AccountService {
	return &AccountService{
		accounts:  accounts,
		tokens:    tokens,
		hasher:    hasher,
		mail:      mail,
		avatars:   avatars,
		accessTTL: accessTTL,
	}
}

// Signup creates an unconfirmed account. The avatar lookup is best effort
// and the confirmation email is scheduled without blocking the response.
func (s *AccountService) Signup(ctx context.Context, username, email, password string) (*model.Account, error) {
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{Username: username, Email: email, PasswordHash: hash}

	if s.avatars != nil {
		if url, err := s.avatars.Lookup(ctx, email); err != nil {
			log.Printf("signup: avatar lookup for %s failed: %v", email, err)
		} else {
			acc.Avatar = &url
		}
	}

	if err := s.accounts.Insert(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	s.scheduleConfirmation(acc.Email, acc.Username)
	return acc, nil
}

// Login verifies credentials and issues a fresh token pair. The stored
// refresh token is overwritten, so at most one refresh token per account
// is ever valid.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrInvalidEmail
	}
	if !acc.Confirmed {
		return nil, ErrEmailNotConfirmed
	}
	if !s.hasher.Verify(acc.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}
	return s.issuePair(ctx, acc)
}

// Refresh exchanges a refresh token for a new pair, rotating the stored
// token. A signed token that does not match the stored one is treated as
// reuse: the stored token is cleared so the session dies and the holder
// of either copy must log in again.
func (s *AccountService) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	email, err := s.tokens.VerifyScoped(auth.ScopeRefresh, raw)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrInvalidRefresh
	}
	if acc.RefreshToken == nil || *acc.RefreshToken != raw {
		if err := s.accounts.SaveRefreshToken(ctx, acc.ID, nil); err != nil {
			log.Printf("refresh: clearing token for %s failed: %v", acc.Email, err)
		}
		return nil, ErrInvalidRefresh
	}
	return s.issuePair(ctx, acc)
}

// ConfirmEmail flips the confirmed flag for the token's subject. The
// second call with the same valid token is not an error: it reports
// already=true and mutates nothing.
func (s *AccountService) ConfirmEmail(ctx context.Context, token string) (already bool, err error) {
	email, err := s.tokens.VerifyEmail(token)
	if err != nil {
		return false, ErrVerification
	}
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return false, ErrVerification
	}
	if acc.Confirmed {
		return true, nil
	}
	return false, s.accounts.MarkConfirmed(ctx, email)
}

// RequestConfirmation schedules another confirmation email. An unknown
// email is not an error and publishes nothing. The caller always gets
// the same generic answer, so account existence is never disclosed.
func (s *AccountService) RequestConfirmation(ctx context.Context, email string) (already bool, err error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return false, nil
	}
	if acc.Confirmed {
		return true, nil
	}
	s.scheduleConfirmation(acc.Email, acc.Username)
	return false, nil
}

// UpdateAvatar persists an uploaded avatar URL on the account.
func (s *AccountService) UpdateAvatar(ctx context.Context, acc *model.Account, url string) error {
	if err := s.accounts.SaveAvatar(ctx, acc.Email, url); err != nil {
		return err
	}
	acc.Avatar = &url
	return nil
}

// scheduleConfirmation issues an email token and publishes the message in
// the background so signup never waits on the broker.
func (s *AccountService) scheduleConfirmation(email, username string) {
	if s.mail == nil {
		return
	}
	token, err := s.tokens.IssueEmail(email)
	if err != nil {
		log.Printf("email: issuing confirmation token for %s failed: %v", email, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mail.PublishConfirmation(ctx, email, username, token); err != nil {
			log.Printf("email: publishing confirmation for %s failed: %v", email, err)
		}
	}()
}

func (s *AccountService) issuePair(ctx context.Context, acc *model.Account) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(acc.Email, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(acc.Email, 0)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SaveRefreshToken(ctx, acc.ID, &refresh); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
