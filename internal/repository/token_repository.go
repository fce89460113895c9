package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/greenwork/greenwork-api/internal/model"
)

// TokenRepo persists refresh tokens in the 'tokens' table.  One row
// per issued token; validity is always decided from current row state
// read at redemption time, never cached.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row for a user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, refreshToken string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tokens (user_id, refresh_token, expires_at, is_revoked, created_at) VALUES (?,?,?,0,?)",
		userID, refreshToken, exp, time.Now().UTC())
	return err
}

// GetByRefresh loads the row for an opaque refresh token.  A missing
// token surfaces as sql.ErrNoRows; revocation and expiry checks are
// left to the caller via Token.Valid so the redeem path can log the
// precise reason internally while the client sees a uniform failure.
func (r *TokenRepo) GetByRefresh(ctx context.Context, refreshToken string) (model.Token, error) {
	var t model.Token
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, refresh_token, expires_at, is_revoked, created_at FROM tokens WHERE refresh_token=? LIMIT 1",
		refreshToken).
		Scan(&t.ID, &t.UserID, &t.RefreshToken, &t.ExpiresAt, &t.IsRevoked, &t.CreatedAt)
	return t, err
}

// Revoke marks a token revoked.  Revoking a token that does not exist
// is a no-op, not an error: logout always succeeds from the client's
// point of view.
func (r *TokenRepo) Revoke(ctx context.Context, refreshToken string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tokens SET is_revoked=1 WHERE refresh_token=? AND is_revoked=0",
		refreshToken)
	return err
}

// RevokeAllForUser revokes every active token a user holds.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tokens SET is_revoked=1 WHERE user_id=? AND is_revoked=0", userID)
	return err
}

// DeleteExpired removes rows whose expiry has passed.  Used by the
// operator, not by the request path.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
