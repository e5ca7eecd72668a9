// Package repository persists comments. It implements the generic CRUD
// contract; comments need nothing beyond it.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"snapfeed/backend/internal/comment/domain"
)

// Filter keys accepted by FindByFilter.
const (
	filterPost   = "post"
	filterSender = "sender"
)

// PostgresRepository persists comments in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a comment repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists the comment.
func (r *PostgresRepository) Insert(ctx context.Context, c *domain.Comment) error {
	const query = `
		INSERT INTO comments (id, post_id, sender, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.PostID, c.Sender, c.Content, c.CreatedAt)
	return err
}

// FindByID returns the comment, or nil if absent.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `
		SELECT id, post_id, sender, content, created_at
		FROM comments
		WHERE id = $1
	`
	c := &domain.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.PostID, &c.Sender, &c.Content, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByFilter returns comments matching the whitelisted filter keys, oldest
// first so threads read top down.
func (r *PostgresRepository) FindByFilter(ctx context.Context, filter map[string]string) ([]*domain.Comment, error) {
	query := `
		SELECT id, post_id, sender, content, created_at
		FROM comments
	`
	var (
		args  []any
		where []string
	)
	if post, ok := filter[filterPost]; ok && post != "" {
		args = append(args, post)
		where = append(where, `post_id = $1`)
	}
	if sender, ok := filter[filterSender]; ok && sender != "" {
		args = append(args, sender)
		if len(args) == 1 {
			where = append(where, `sender = $1`)
		} else {
			where = append(where, `sender = $2`)
		}
	}
	for i, clause := range where {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Comment
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.Sender, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites the comment's content and returns the updated comment,
// or nil when absent.
func (r *PostgresRepository) Update(ctx context.Context, id string, c *domain.Comment) (*domain.Comment, error) {
	const query = `
		UPDATE comments
		SET content = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, c.Content)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// DeleteByID removes the comment and reports whether it existed.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
