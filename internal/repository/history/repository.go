// File: internal/repository/history/repository.go
package history

import (
	"context"
	"errors"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/slot"
)

// StorageKey names the single slot that holds every profile's sessions.
const StorageKey = "conselheiro_familia_sessions"

// Logger is the logging dependency of the repository.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Repository loads and saves the whole session map as one blob.
type Repository struct {
	slot   slot.Slot
	key    string
	logger Logger
}

func NewRepository(s slot.Slot, logger Logger) *Repository {
	return &Repository{slot: s, key: StorageKey, logger: logger}
}

// Load never fails: an absent, unreadable or malformed blob yields an
// empty mapping for both profiles.
func (r *Repository) Load(ctx context.Context) domain.SessionMap {
	data, err := r.slot.Get(ctx, r.key)
	if errors.Is(err, slot.ErrEmpty) {
		r.logger.Info("no stored session history", "key", r.key)
		return domain.NewSessionMap()
	}
	if err != nil {
		r.logger.Error("failed to read session history", "key", r.key, "error", err)
		return domain.NewSessionMap()
	}

	sessions, err := Decode(data)
	if err != nil {
		r.logger.Error("discarding malformed session history", "key", r.key, "bytes", len(data), "error", err)
		return domain.NewSessionMap()
	}

	r.logger.Info("session history loaded",
		"marcelo_sessions", len(sessions[domain.ProfileMarcelo]),
		"fernanda_sessions", len(sessions[domain.ProfileFernanda]))
	return sessions
}

// Save overwrites the slot with the full mapping.
func (r *Repository) Save(ctx context.Context, sessions domain.SessionMap) error {
	data, err := Encode(sessions)
	if err != nil {
		return err
	}
	if err := r.slot.Put(ctx, r.key, data); err != nil {
		r.logger.Error("failed to save session history", "key", r.key, "error", err)
		return err
	}
	r.logger.Debug("session history saved", "bytes", len(data))
	return nil
}
