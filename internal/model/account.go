package model

import "time"

// Account represents a row in the `accounts` table. An account is the
// authenticated principal of the API; every contact row references the
// account that owns it. The password is stored only as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Username     – display name chosen at signup.
//  Email        – unique email address, also the JWT subject.
//  PasswordHash – bcrypt hashed password.
//  Confirmed    – whether the email address has been confirmed.
//  Avatar       – URL of the avatar image (nil until one is set).
//  RefreshToken – the single currently valid refresh token, nil when the
//                 account has no active session. A new login or refresh
//                 overwrites this value; last write wins.
//  CreatedAt    – timestamp of creation.
type Account struct {
	ID           uint64     // accounts.id
	Username     string     // accounts.username
	Email        string     // accounts.email
	PasswordHash string     // accounts.password_hash
	Confirmed    bool       // accounts.confirmed
	Avatar       *string    // accounts.avatar (nullable)
	RefreshToken *string    // accounts.refresh_token (nullable)
	CreatedAt    time.Time  // accounts.created_at
}
