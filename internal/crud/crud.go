// Package crud defines the generic persistence contract shared by the
// feed entities (posts, comments) and a gin handler generalizing their
// endpoints. Entity-specific behavior (ownership, captioning) lives in the
// entity handlers, which wrap or extend the generic one.
package crud

import "context"

// Repository is the generic CRUD contract, parameterized by entity type.
// Lookups return nil for missing entities; only database failures are errors.
type Repository[T any] interface {
	Insert(ctx context.Context, item *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	// FindByFilter returns entities matching all filter fields. Implementations
	// accept a whitelisted set of keys and ignore the rest.
	FindByFilter(ctx context.Context, filter map[string]string) ([]*T, error)
	// Update overwrites the entity's mutable fields by id and returns the
	// updated entity, or nil when absent.
	Update(ctx context.Context, id string, item *T) (*T, error)
	// DeleteByID removes the entity and reports whether it existed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}
