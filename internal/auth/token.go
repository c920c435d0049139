package auth // package auth implements token issuance, verification and credential checks

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"
)

// Scope restricts what an otherwise valid token may be used for. It is a
// closed set: access tokens authenticate API calls, refresh tokens mint
// new pairs, and email tokens confirm an address. The verifier compares
// scopes exactly, so a leaked access token can never be replayed as a
// refresh token or vice versa.
type Scope string

const (
    ScopeAccess  Scope = "access"  // short-lived bearer token for protected endpoints
    ScopeRefresh Scope = "refresh" // long-lived token exchanged for new pairs
    ScopeEmail   Scope = "email"   // one-purpose token embedded in confirmation links
)

// Verification failures. Handlers and the auth gate decide how much of
// this detail to expose; the gate collapses all of them into
// ErrUnauthorized.
var (
    ErrInvalidScope = errors.New("invalid scope for token")
    ErrExpired      = errors.New("token has expired")
    ErrMalformed    = errors.New("could not validate token")
)

// Default lifetimes, matching what the service issued historically.
const (
    DefaultAccessTTL  = 15 * time.Minute
    DefaultRefreshTTL = 7 * 24 * time.Hour
    DefaultEmailTTL   = 7 * 24 * time.Hour
)

// Claims is the payload carried by every token this service issues. The
// subject is the account email. Scope is omitted from JSON when empty so
// foreign tokens without the claim parse cleanly and then fail the scope
// comparison.
type Claims struct {
    jwt.RegisteredClaims
    Scope Scope `json:"scope,omitempty"`
}

// TokenService signs and verifies HS256 tokens with a single symmetric
// secret shared between issuer and verifier. The clock is injectable so
// expiry behaviour can be pinned down in tests; production construction
// uses time.Now.
type TokenService struct {
    secret []byte
    now    func() time.Time
}

// NewTokenService builds a TokenService around the configured signing secret.
func NewTokenService(secret string) *TokenService {
    return &TokenService{secret: []byte(secret), now: time.Now}
}

// IssueAccess signs an access-scoped token for the subject. A non-positive
// ttl selects DefaultAccessTTL.
func (s *TokenService) IssueAccess(subject string, ttl time.Duration) (string, error) {
    if ttl <= 0 {
        ttl = DefaultAccessTTL
    }
    return s.issue(subject, ScopeAccess, ttl)
}

// IssueRefresh signs a refresh-scoped token for the subject. A non-positive
// ttl selects DefaultRefreshTTL.
func (s *TokenService) IssueRefresh(subject string, ttl time.Duration) (string, error) {
    if ttl <= 0 {
        ttl = DefaultRefreshTTL
    }
    return s.issue(subject, ScopeRefresh, ttl)
}

// IssueEmail signs the token embedded in confirmation links. Email tokens
// carry their own scope so VerifyScoped(ScopeAccess, ...) and
// VerifyScoped(ScopeRefresh, ...) always reject them.
func (s *TokenService) IssueEmail(subject string) (string, error) {
    return s.issue(subject, ScopeEmail, DefaultEmailTTL)
}

func (s *TokenService) issue(subject string, scope Scope, ttl time.Duration) (string, error) {
    now := s.now().UTC()
    claims := Claims{
        RegisteredClaims: jwt.RegisteredClaims{
            // Timestamps are second-granular, so without an ID two tokens
            // for the same subject issued within one second would encode
            // identically. Rotation relies on every token being distinct.
            ID:        uuid.NewString(),
            Subject:   subject,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
        },
        Scope: scope,
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString(s.secret)
}

// VerifyScoped parses the token and returns its subject. The token must
// carry exactly the expected scope; a valid signature is not enough.
// A token is live strictly while now < exp, so a token checked at its
// exact expiry instant is already expired.
func (s *TokenService) VerifyScoped(expected Scope, token string) (string, error) {
    claims, err := s.parse(token)
    if err != nil {
        return "", err
    }
    if claims.Scope != expected {
        return "", ErrInvalidScope
    }
    return claims.Subject, nil
}

// VerifyEmail parses a confirmation token and returns its subject. Unlike
// VerifyScoped it reports no scope error of its own: anything that is not
// a well-formed, unexpired email token is malformed.
func (s *TokenService) VerifyEmail(token string) (string, error) {
    claims, err := s.parse(token)
    if err != nil {
        return "", err
    }
    if claims.Scope != ScopeEmail {
        return "", ErrMalformed
    }
    return claims.Subject, nil
}

func (s *TokenService) parse(token string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
        // Only HMAC is acceptable; reject tokens claiming other algorithms.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrMalformed
        }
        return s.secret, nil
    }, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrExpired
        }
        return nil, ErrMalformed
    }
    if !tok.Valid || claims.Subject == "" {
        return nil, ErrMalformed
    }
    return claims, nil
}
