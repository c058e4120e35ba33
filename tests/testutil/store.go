package testutil

import (
	"testing"
	"time"

	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/store"
)

// NewTestStorage creates a Storage over an in-memory SQLite backend with all
// migrations applied. It automatically closes the storage when the test
// completes.
func NewTestStorage(t *testing.T) *store.Storage {
	t.Helper()

	b, err := store.NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("creating test backend: %v", err)
	}
	s := store.New(b, store.Options{})

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test storage: %v", err)
		}
	})

	return s
}

// FixedClock returns a state option whose clock always reads now.
func FixedClock(now time.Time) state.Option {
	return state.WithClock(func() time.Time { return now })
}
