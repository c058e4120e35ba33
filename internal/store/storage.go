// Package store persists the application state as one JSON document in a
// named slot of a pluggable backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// DefaultQuotaBytes matches the budget browsers give a single origin's
// local storage.
const DefaultQuotaBytes = 5 * 1024 * 1024

// Options configures a Storage.
type Options struct {
	// Key names the slot. Empty means model.DefaultStorageKey.
	Key string
	// QuotaBytes caps the serialized payload. Negative disables the check;
	// zero means DefaultQuotaBytes.
	QuotaBytes int
	Logger     *log.Logger
}

// OptionsFromConfig maps the storage section of the config file. A zero
// quota there disables the check.
func OptionsFromConfig(cfg model.StorageConfig, logger *log.Logger) Options {
	quota := cfg.QuotaBytes
	if quota == 0 {
		quota = -1
	}
	return Options{Key: cfg.Key, QuotaBytes: quota, Logger: logger}
}

// Open connects the configured backend and wraps it.
func Open(ctx context.Context, cfg model.StorageConfig, logger *log.Logger) (*Storage, error) {
	b, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Backend, err)
	}
	return New(b, OptionsFromConfig(cfg, logger)), nil
}

// Storage saves, loads, exports and imports the application state.
type Storage struct {
	backend Backend
	key     string
	quota   int
	logger  *log.Logger
}

// New wraps a backend.
func New(b Backend, opts Options) *Storage {
	s := &Storage{
		backend: b,
		key:     opts.Key,
		quota:   opts.QuotaBytes,
		logger:  opts.Logger,
	}
	if s.key == "" {
		s.key = model.DefaultStorageKey
	}
	if s.quota == 0 {
		s.quota = DefaultQuotaBytes
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Key returns the slot name.
func (s *Storage) Key() string {
	return s.key
}

// Close closes the backend.
func (s *Storage) Close() error {
	return s.backend.Close()
}

// Save serializes st and writes it to the slot.
func (s *Storage) Save(ctx context.Context, st *state.AppState) error {
	return s.SaveRecord(ctx, st.Record())
}

// SaveRecord serializes rec and writes it to the slot.
func (s *Storage) SaveRecord(ctx context.Context, rec model.AppStateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &StorageError{Kind: KindWrite, Op: "save", Err: err}
	}
	return s.write(ctx, "save", string(data))
}

func (s *Storage) write(ctx context.Context, op, text string) error {
	if s.quota > 0 && len(text) > s.quota {
		return &StorageError{
			Kind: KindQuotaExceeded,
			Op:   op,
			Err:  fmt.Errorf("payload is %d bytes, limit %d", len(text), s.quota),
		}
	}
	if err := s.backend.Put(ctx, s.key, text); err != nil {
		kind := KindWrite
		if errors.Is(err, errBackendFull) {
			kind = KindQuotaExceeded
		}
		return &StorageError{Kind: kind, Op: op, Err: err}
	}
	return nil
}

// Load reads the slot and rebuilds the state. It returns (nil, nil) when
// nothing is stored. A slot that cannot be decoded is logged, deleted and
// treated as absent.
func (s *Storage) Load(ctx context.Context, opts ...state.Option) (*state.AppState, error) {
	text, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, &StorageError{Kind: KindRead, Op: "load", Err: err}
	}
	if !ok {
		return nil, nil
	}

	st, err := state.UnmarshalState([]byte(text), opts...)
	if err != nil {
		s.logger.Warn("discarding corrupt saved state", "key", s.key, "err", err)
		if derr := s.backend.Delete(ctx, s.key); derr != nil {
			s.logger.Error("removing corrupt saved state", "key", s.key, "err", derr)
		}
		return nil, nil
	}
	return st, nil
}

// Export returns the stored document verbatim, or "{}" when the slot is empty.
func (s *Storage) Export(ctx context.Context) (string, error) {
	text, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return "", &StorageError{Kind: KindRead, Op: "export", Err: err}
	}
	if !ok {
		return "{}", nil
	}
	return text, nil
}

// Import validates text and, only if it describes a usable state, writes it
// to the slot verbatim. A rejected document leaves the slot untouched.
func (s *Storage) Import(ctx context.Context, text string) error {
	if err := validateDocument(text); err != nil {
		return &StorageError{Kind: KindInvalidImport, Op: "import", Err: err}
	}
	if _, err := state.UnmarshalState([]byte(text)); err != nil {
		return &StorageError{Kind: KindInvalidImport, Op: "import", Err: err}
	}
	if err := s.write(ctx, "import", text); err != nil {
		return err
	}
	s.logger.Info("imported state", "key", s.key, "bytes", len(text))
	return nil
}

// Clear deletes the slot.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return &StorageError{Kind: KindWrite, Op: "clear", Err: err}
	}
	return nil
}
