package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/todomaster/internal/model"
)

// Backend is a named-slot text store. Storage keeps the whole application
// state in one slot.
type Backend interface {
	// Get returns the slot's text and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put replaces the slot's text.
	Put(ctx context.Context, key, value string) error
	// Delete removes the slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// errBackendFull is wrapped by backends when the underlying store reports
// it has no room left. Storage maps it to KindQuotaExceeded.
var errBackendFull = errors.New("backend full")

// OpenBackend constructs the backend named by cfg.Backend.
func OpenBackend(ctx context.Context, cfg model.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case model.BackendSQLite, "":
		return NewSQLiteBackend(cfg.Path)
	case model.BackendRedis:
		return NewRedisBackend(ctx, RedisOptions{URL: cfg.RedisURL})
	case model.BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
