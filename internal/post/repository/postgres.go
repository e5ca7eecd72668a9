package repository

import (
	"context"
	"database/sql"
	"errors"

	"snapfeed/backend/internal/post/domain"
)

// Filter keys accepted by FindByFilter; everything else is ignored.
const (
	filterSender = "sender"
)

// PostgresRepository persists posts and their likes in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a post repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists the post. Likes of a new post are empty.
func (r *PostgresRepository) Insert(ctx context.Context, p *domain.Post) error {
	const query = `
		INSERT INTO posts (id, title, content, sender, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Content, p.Sender, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return err
}

// FindByID returns the post with its likes, or nil if absent.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	const query = `
		SELECT id, title, content, sender, image_url, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	p := &domain.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.Content, &p.Sender, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Likes, err = r.likesFor(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByFilter returns posts matching the whitelisted filter keys, newest first.
func (r *PostgresRepository) FindByFilter(ctx context.Context, filter map[string]string) ([]*domain.Post, error) {
	query := `
		SELECT id, title, content, sender, image_url, created_at, updated_at
		FROM posts
	`
	var args []any
	if sender, ok := filter[filterSender]; ok && sender != "" {
		query += ` WHERE sender = $1`
		args = append(args, sender)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Post
	for rows.Next() {
		p := &domain.Post{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Sender, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if p.Likes, err = r.likesFor(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update overwrites the post's mutable fields and returns the updated post,
// or nil when absent.
func (r *PostgresRepository) Update(ctx context.Context, id string, p *domain.Post) (*domain.Post, error) {
	const query = `
		UPDATE posts
		SET title = $2, content = $3, image_url = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, p.Title, p.Content, p.ImageURL)
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

// DeleteByID removes the post and reports whether it existed. Likes cascade.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToggleLike flips the user's like. The delete-then-insert pair keeps the
// toggle idempotent under retries; the primary key makes double-likes impossible.
func (r *PostgresRepository) ToggleLike(ctx context.Context, postID, userID string) (liked, found bool, err error) {
	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return false, false, err
	}
	if !exists {
		return false, false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, true, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, true, err
	} else if n > 0 {
		return false, true, nil
	}
	const insert = `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, postID, userID); err != nil {
		return false, true, err
	}
	return true, true, nil
}

func (r *PostgresRepository) likesFor(ctx context.Context, postID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM post_likes WHERE post_id = $1`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var likes []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		likes = append(likes, id)
	}
	return likes, rows.Err()
}
