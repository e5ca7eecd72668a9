package repository

import (
	"context"
	"time"

	"snapfeed/backend/internal/token/domain"
)

// Repository defines persistence for refresh tokens. Records are appended on
// issue, mutated only by revocation, and removed only by pruning.
type Repository interface {
	// Add appends a new token record.
	Add(ctx context.Context, t *domain.RefreshToken) error
	// GetByTokenHash returns the record for the hashed token, or nil if absent.
	GetByTokenHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	// Revoke marks the record revoked. Revoking a missing or already revoked
	// token is a no-op, not an error.
	Revoke(ctx context.Context, hash string, at time.Time) error
	// RevokeIfActive revokes the record only when it is currently unrevoked
	// and unexpired, as a single conditional write. It reports whether this
	// call performed the revocation; a false result means a concurrent caller
	// won the rotation race or the token was never active.
	RevokeIfActive(ctx context.Context, hash string, at time.Time) (bool, error)
	// RevokeAllByUser revokes every active token of the account. Called when
	// a rotated token is presented again, which marks the account's tokens
	// as compromised.
	RevokeAllByUser(ctx context.Context, userID string, at time.Time) error
	// DeleteExpired prunes the account's records past expiry. Revoked but
	// unexpired records are kept so token reuse stays detectable; active
	// unexpired records are never removed.
	DeleteExpired(ctx context.Context, userID string, now time.Time) error
}
