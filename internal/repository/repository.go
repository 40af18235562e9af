// Package repository declares the storage interfaces the services depend on.
//
// The only implementation lives in repository/jsonfile (flat JSON files).
// Services and tests depend on these interfaces, never on the concrete
// store, so a test can hand a service a fake that fails on demand.
package repository

import (
	"context"

	"github.com/sakif/event-manager/internal/model"
)

// UserRepository is the user directory.
type UserRepository interface {
	// Create assigns user.ID and persists the user. It returns an
	// apperror.ErrConflict error if the username or email is taken.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail returns apperror.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// BlacklistRepository holds revoked tokens.
type BlacklistRepository interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}

// EventRepository stores event records in insertion order.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
}
