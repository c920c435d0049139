package auth

import "golang.org/x/crypto/bcrypt"

// Hasher abstracts the one-way password hash so services can be tested
// with a deterministic stub. Verification requires the original password;
// the hash is never reversed.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// BcryptHasher is the production Hasher. Cost follows the configured
// bcrypt work factor.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of plain using the configured cost.
func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares a bcrypt hash and a plain password.
func (h BcryptHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
