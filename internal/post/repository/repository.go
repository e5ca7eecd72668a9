package repository

import (
	"context"

	"snapfeed/backend/internal/crud"
	"snapfeed/backend/internal/post/domain"
)

// Repository extends the generic CRUD contract with the like toggle.
type Repository interface {
	crud.Repository[domain.Post]
	// ToggleLike flips the user's like on the post. It returns the new liked
	// state, and found=false when the post does not exist.
	ToggleLike(ctx context.Context, postID, userID string) (liked, found bool, err error)
}
