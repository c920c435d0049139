package auth

import (
	"context"
	"errors"

	"github.com/Vasyl-Hlushchenko/contacts-api/internal/model"
)

// AccountContextKey is the request-context key under which the auth
// middleware stores the account the gate resolved. Handlers read it back
// through the same constant.
const AccountContextKey = "account"

// ErrUnauthorized is the single error the gate returns. Callers get no
// hint which check failed, so the response never discloses whether an
// email is registered or merely which token attribute was off.
var ErrUnauthorized = errors.New("could not validate credentials")

// AccountLookup is the slice of the credential store the gate needs.
// Absence is reported as (nil, nil), not an error.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

// Gate resolves the current account from a bearer token. It is the single
// choke point in front of every protected operation: handlers never parse
// tokens themselves.
type Gate struct {
	tokens   *TokenService
	accounts AccountLookup
}

func NewGate(tokens *TokenService, accounts AccountLookup) *Gate {
	return &Gate{tokens: tokens, accounts: accounts}
}

// CurrentAccount verifies the bearer token with the access scope and
// loads the matching account. The account is returned as-is; the gate
// performs no mutation.
func (g *Gate) CurrentAccount(ctx context.Context, bearer string) (*model.Account, error) {
	subject, err := g.tokens.VerifyScoped(ScopeAccess, bearer)
	if err != nil {
		return nil, ErrUnauthorized
	}
	acc, err := g.accounts.FindByEmail(ctx, subject)
	if err != nil || acc == nil {
		return nil, ErrUnauthorized
	}
	return acc, nil
}
