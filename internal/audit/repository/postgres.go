package repository

import (
	"context"
	"database/sql"

	"snapfeed/backend/internal/audit/domain"
)

// PostgresRepository persists audit logs in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	const query = `
		INSERT INTO audit_logs (id, actor_id, action, outcome, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	actor := sql.NullString{String: a.ActorID, Valid: a.ActorID != ""}
	meta := a.Metadata
	if meta == "" {
		meta = "{}"
	}
	_, err := r.db.ExecContext(ctx, query, a.ID, actor, a.Action, a.Outcome, meta, a.CreatedAt)
	return err
}

// ListByActor returns audit logs for the given actor, newest first, paginated
// by limit and offset.
func (r *PostgresRepository) ListByActor(ctx context.Context, actorID string, limit, offset int32) ([]*domain.AuditLog, error) {
	const query = `
		SELECT id, actor_id, action, outcome, metadata, created_at
		FROM audit_logs
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, actorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		a := &domain.AuditLog{}
		var actor sql.NullString
		if err := rows.Scan(&a.ID, &actor, &a.Action, &a.Outcome, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ActorID = actor.String
		out = append(out, a)
	}
	return out, rows.Err()
}
