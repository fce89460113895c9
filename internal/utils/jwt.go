package utils // package utils provides helpers for token creation and verification

import (
	"crypto/rand"  // secure random bytes for refresh tokens
	"encoding/hex" // hex encoding of refresh tokens
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for signed access tokens
)

// Issuer is the `iss` claim stamped into every access token.
const Issuer = "greenwork-api"

// ErrInvalidToken is returned by VerifyAccessToken for any token that
// fails verification.  The reason (bad signature, expired, malformed
// claims) is deliberately not distinguished so callers cannot leak it
// to the client.
var ErrInvalidToken = errors.New("invalid token")

// UserData is the identity payload embedded under the `data` claim of
// an access token.
type UserData struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AccessClaims is the full claim set of an access token: the standard
// iss/iat/exp registered claims plus the user identity under `data`.
type AccessClaims struct {
	Data UserData `json:"data"`
	jwt.RegisteredClaims
}

// AccessToken bundles a signed JWT string with its expiry so handlers
// can return both to the client.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a long-lived opaque token used to obtain new access
// tokens.  Raw is the 64-character hex string handed to the client and
// persisted verbatim in the tokens table.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT carrying the user's
// id, email and role under the `data` claim.  The ttl differs by
// issuance path: tokens minted at login or registration live longer
// than tokens minted from a refresh call.
func NewAccessToken(secret string, user UserData, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := AccessClaims{
		Data: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken checks the signature and expiry of a token and
// returns its claims.  Expiry is validated by the jwt library against
// the current time.  Any failure collapses into ErrInvalidToken.
func VerifyAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Data.ID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewRefreshToken returns a cryptographically random 256-bit token,
// hex encoded, together with its expiry ttlDays in the future.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, 32) // 32 bytes -> 64 hex chars
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}
