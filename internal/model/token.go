package model

import "time"

// Token models a row in the `tokens` table.  One row exists per
// issued refresh token; a user may hold many concurrent valid tokens
// (one per device).  The opaque token string itself is stored in
// RefreshToken and must be unique.  Validity is always re-checked
// against the current row state: a token is usable only while
// IsRevoked is false and ExpiresAt lies in the future.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the token.
//  RefreshToken – opaque random 256-bit token, hex encoded.
//  ExpiresAt    – expiration timestamp (30 days after issuance).
//  IsRevoked    – set at logout; revoked tokens are never reused.
//  CreatedAt    – timestamp of issuance.
type Token struct {
	ID           uint64    // tokens.id
	UserID       uint64    // tokens.user_id
	RefreshToken string    // tokens.refresh_token
	ExpiresAt    time.Time // tokens.expires_at
	IsRevoked    bool      // tokens.is_revoked
	CreatedAt    time.Time // tokens.created_at
}

// Valid reports whether the token can still be redeemed.
func (t Token) Valid(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
