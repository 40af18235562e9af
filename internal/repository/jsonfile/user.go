package jsonfile

import (
	"context"
	"log/slog"

	"github.com/rs/xid"
	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the user directory, backed by users.json.
type UserStore struct {
	users *Collection[model.User]
}

func NewUserStore(path string, logger *slog.Logger) *UserStore {
	return &UserStore{users: NewCollection[model.User](path, logger)}
}

// Create assigns a new xid to user.ID and appends it.
//
// The uniqueness check runs inside Update, under the file lock, so two
// concurrent registrations of the same username cannot both succeed.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	return s.users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for _, existing := range users {
			if existing.Username == user.Username || existing.Email == user.Email {
				return nil, apperror.Conflict("User already registered with this username or email.")
			}
		}

		user.ID = xid.New().String()
		return append(users, *user), nil
	})
}

// GetByEmail returns the user registered with email (exact match).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}

	return nil, apperror.NotFound("user not found")
}
