// Package sync coalesces state changes into debounced background saves.
package sync

import (
	"context"
	"io"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// DefaultDebounce is the quiet period after the last change before a save.
const DefaultDebounce = 500 * time.Millisecond

// saveTimeout bounds a single background write.
const saveTimeout = 10 * time.Second

// Persister writes one snapshot of the application state.
type Persister interface {
	SaveRecord(ctx context.Context, rec model.AppStateRecord) error
}

// SaveResultMsg is a tea.Msg sent after every completed write.
type SaveResultMsg struct {
	Err error
	At  time.Time
}

// SaverOptions configures a Saver.
type SaverOptions struct {
	Debounce time.Duration
	Logger   *log.Logger
	// OnError runs, on the saver's goroutine, after a failed write.
	OnError func(error)
}

// Saver debounces snapshots and writes the latest one once changes stop.
// Only one write is in flight at a time; a snapshot arriving during a write
// is saved after it completes.
type Saver struct {
	persister Persister
	debounce  time.Duration
	logger    *log.Logger
	onError   func(error)

	mu      gosync.Mutex
	idle    *gosync.Cond
	pending *model.AppStateRecord
	timer   *time.Timer
	running bool
	stopped bool

	resultCh chan SaveResultMsg
}

// NewSaver creates a Saver writing through p.
func NewSaver(p Persister, opts SaverOptions) *Saver {
	s := &Saver{
		persister: p,
		debounce:  opts.Debounce,
		logger:    opts.Logger,
		onError:   opts.OnError,
		resultCh:  make(chan SaveResultMsg, 16),
	}
	if s.debounce <= 0 {
		s.debounce = DefaultDebounce
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.idle = gosync.NewCond(&s.mu)
	return s
}

// Notify records rec as the latest snapshot and restarts the quiet period.
// rec must not be shared with the caller afterwards.
func (s *Saver) Notify(rec model.AppStateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.pending = &rec
		return
	}
	s.pending = &rec
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// Attach subscribes the saver to st so every mutation schedules a save.
// The returned function detaches it.
func (s *Saver) Attach(st *state.AppState) (detach func()) {
	return st.Subscribe(func(state.Event) {
		s.Notify(st.Record())
	})
}

// Pending reports whether a snapshot is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// fire runs on the timer goroutine.
func (s *Saver) fire() {
	s.mu.Lock()
	if s.running || s.stopped {
		// The in-flight write picks the snapshot up when it finishes.
		s.mu.Unlock()
		return
	}
	s.running = true
	for s.pending != nil {
		rec := *s.pending
		s.pending = nil
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.persister.SaveRecord(ctx, rec)
		cancel()
		s.report(err)

		s.mu.Lock()
		if s.stopped {
			break
		}
	}
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}

// Flush waits for any in-flight write, then writes the pending snapshot
// immediately. It is the exit path and works after Stop.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.running {
		s.idle.Wait()
	}
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	rec := *s.pending
	s.pending = nil
	s.running = true
	s.mu.Unlock()

	err := s.persister.SaveRecord(ctx, rec)
	s.report(err)

	s.mu.Lock()
	s.running = false
	s.idle.Broadcast()
	// A snapshot that arrived during the flush lost its timer to us.
	if s.pending != nil && !s.stopped {
		s.timer = time.AfterFunc(s.debounce, s.fire)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("flushing state", "err", err)
	}
	return err
}

// Stop cancels the pending timer. Later snapshots are kept for Flush but
// never written in the background.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Saver) report(err error) {
	if err != nil {
		s.logger.Warn("autosave failed", "err", err)
		if s.onError != nil {
			s.onError(err)
		}
	} else {
		s.logger.Debug("autosaved state")
	}
	select {
	case s.resultCh <- SaveResultMsg{Err: err, At: time.Now()}:
	default:
		// Drop if channel is full to avoid blocking the saver
	}
}

// WaitForResult returns a tea.Cmd that waits for the next save result.
// Call it again after handling a SaveResultMsg to keep listening.
func (s *Saver) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
