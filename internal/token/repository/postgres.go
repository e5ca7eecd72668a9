package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"snapfeed/backend/internal/token/domain"
)

// PostgresRepository persists refresh tokens in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh token repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends a new token record.
func (r *PostgresRepository) Add(ctx context.Context, t *domain.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, user_id, token_hash, device, issued_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.TokenHash, t.Device, t.IssuedAt, t.ExpiresAt, nullTime(t.RevokedAt))
	return err
}

// GetByTokenHash returns the record for the hashed token, or nil if absent.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	const query = `
		SELECT id, user_id, token_hash, device, issued_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	t := &domain.RefreshToken{}
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Device, &t.IssuedAt, &t.ExpiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}
	return t, nil
}

// Revoke marks the record revoked; missing or already revoked tokens are a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, hash string, at time.Time) error {
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, hash, at)
	return err
}

// RevokeIfActive flips revoked_at in a single conditional write. The WHERE
// clause makes concurrent rotations of the same token serialize on the row:
// exactly one caller observes an affected row.
func (r *PostgresRepository) RevokeIfActive(ctx context.Context, hash string, at time.Time) (bool, error) {
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
	`
	res, err := r.db.ExecContext(ctx, query, hash, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeAllByUser revokes every active token of the account.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string, at time.Time) error {
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, userID, at)
	return err
}

// DeleteExpired prunes records past expiry. Revoked records stay until they
// expire so a replayed rotated token is still recognized as reuse.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, userID string, now time.Time) error {
	const query = `
		DELETE FROM refresh_tokens
		WHERE user_id = $1 AND expires_at <= $2
	`
	_, err := r.db.ExecContext(ctx, query, userID, now)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
