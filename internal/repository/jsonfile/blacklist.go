package jsonfile

import (
	"context"
	"log/slog"

	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/repository"
)

var _ repository.BlacklistRepository = (*BlacklistStore)(nil)

// BlacklistStore holds revoked tokens, backed by blacklistToken.json.
// Entries are never pruned.
type BlacklistStore struct {
	entries *Collection[model.BlacklistEntry]
}

func NewBlacklistStore(path string, logger *slog.Logger) *BlacklistStore {
	return &BlacklistStore{entries: NewCollection[model.BlacklistEntry](path, logger)}
}

// Add revokes token. Adding a token that is already listed is a no-op write.
func (s *BlacklistStore) Add(ctx context.Context, token string) error {
	return s.entries.Update(ctx, func(entries []model.BlacklistEntry) ([]model.BlacklistEntry, error) {
		for _, e := range entries {
			if e.Token == token {
				return entries, nil
			}
		}
		return append(entries, model.BlacklistEntry{Token: token}), nil
	})
}

// Contains reports whether token was revoked. The file is re-read on every
// call; nothing is cached.
func (s *BlacklistStore) Contains(ctx context.Context, token string) (bool, error) {
	entries, err := s.entries.Load(ctx)
	if err != nil {
		return false, err
	}

	for _, e := range entries {
		if e.Token == token {
			return true, nil
		}
	}
	return false, nil
}
