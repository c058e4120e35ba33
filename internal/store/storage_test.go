package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// failingBackend wraps a MemoryBackend and injects errors.
type failingBackend struct {
	*MemoryBackend
	putErr error
	getErr error
	puts   int
}

func (f *failingBackend) Put(ctx context.Context, key, value string) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

func (f *failingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryBackend.Get(ctx, key)
}

func sampleState(t *testing.T) *state.AppState {
	t.Helper()
	n := 0
	st := state.New(
		state.WithClock(func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) }),
		state.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	p := st.CreateProject("Work", model.ProjectOptions{Color: "#3b82f6"})
	_, err := st.CreateTodo("Write report", p.ID, model.TodoOptions{Priority: model.PriorityHigh})
	require.NoError(t, err)
	require.NoError(t, st.SetCurrentProject(p.ID))
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), Options{})
	st := sampleState(t)

	require.NoError(t, s.Save(ctx, st))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, st.Record(), loaded.Record())
	assert.Equal(t, model.DefaultStorageKey, s.Key())
}

func TestLoadMissingSlot(t *testing.T) {
	s := New(NewMemoryBackend(), Options{})
	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLoadCorruptSlotResets(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Put(ctx, model.DefaultStorageKey, "{not json"))
	s := New(b, Options{})

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st)

	_, ok, _ := b.Get(ctx, model.DefaultStorageKey)
	assert.False(t, ok, "corrupt slot should be removed")
}

func TestLoadReadFailure(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend(), getErr: errors.New("io")}
	_, err := New(b, Options{}).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindRead, KindOf(err))
}

func TestSaveQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	b := &failingBackend{MemoryBackend: NewMemoryBackend()}
	s := New(b, Options{QuotaBytes: 64})

	err := s.Save(ctx, sampleState(t))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 0, b.puts, "oversized payload must not reach the backend")

	unlimited := New(b, Options{QuotaBytes: -1})
	require.NoError(t, unlimited.Save(ctx, sampleState(t)))
}

func TestSaveBackendErrors(t *testing.T) {
	ctx := context.Background()

	full := &failingBackend{MemoryBackend: NewMemoryBackend(), putErr: fmt.Errorf("writing slot: %w", errBackendFull)}
	err := New(full, Options{}).Save(ctx, sampleState(t))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	broken := &failingBackend{MemoryBackend: NewMemoryBackend(), putErr: errors.New("disk on fire")}
	err = New(broken, Options{}).Save(ctx, sampleState(t))
	require.Error(t, err)
	assert.Equal(t, KindWrite, KindOf(err))
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), Options{})

	text, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	require.NoError(t, s.Save(ctx, sampleState(t)))
	text, err = s.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, `"allTodos"`)
	assert.Contains(t, text, `"Write report"`)
}

func TestImportValid(t *testing.T) {
	ctx := context.Background()
	src := New(NewMemoryBackend(), Options{})
	require.NoError(t, src.Save(ctx, sampleState(t)))
	text, err := src.Export(ctx)
	require.NoError(t, err)

	dst := New(NewMemoryBackend(), Options{})
	require.NoError(t, dst.Import(ctx, text))

	got, err := dst.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	loaded, err := dst.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Len())
}

func TestImportRejectsAndLeavesSlot(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), Options{})
	require.NoError(t, s.Save(ctx, sampleState(t)))
	before, err := s.Export(ctx)
	require.NoError(t, err)

	cases := map[string]string{
		"not json":       "{nope",
		"missing arrays": `{"projects": []}`,
		"wrong type":     `{"projects": {}, "allTodos": []}`,
		"bad todo":       `{"projects": [], "allTodos": [{"id": "t1"}]}`,
		"bad timestamp":  `{"projects": [{"id":"p1","name":"x","todoIds":[],"createdAt":"yesterday"}], "allTodos": []}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.Import(ctx, text)
			require.ErrorIs(t, err, ErrInvalidImport)

			after, err := s.Export(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestImportReportsSchemaPaths(t *testing.T) {
	s := New(NewMemoryBackend(), Options{})
	err := s.Import(context.Background(), `{"projects": [{"id": "p1"}], "allTodos": []}`)
	require.ErrorIs(t, err, ErrInvalidImport)
	assert.True(t, strings.Contains(err.Error(), "/projects/0"), err.Error())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), Options{})
	require.NoError(t, s.Save(ctx, sampleState(t)))

	require.NoError(t, s.Clear(ctx))
	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(model.StorageConfig{Key: "k", QuotaBytes: 0}, nil)
	assert.Equal(t, -1, opts.QuotaBytes)
	assert.Equal(t, "k", opts.Key)

	opts = OptionsFromConfig(model.StorageConfig{QuotaBytes: 10}, nil)
	assert.Equal(t, 10, opts.QuotaBytes)
}
