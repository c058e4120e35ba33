// Package api serves the application state over a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	gosync "sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/store"
	appsync "github.com/nhle/todomaster/internal/sync"
)

const (
	shutdownTimeout = 15 * time.Second
	flushTimeout    = 10 * time.Second
)

// Options wires a Server. Saver may be nil, in which case mutations are
// written synchronously through Storage.
type Options struct {
	State   *state.AppState
	Storage *store.Storage
	Saver   *appsync.Saver
	Logger  *log.Logger
	// StateOptions are applied when an import replaces the state.
	StateOptions []state.Option
}

// Server exposes AppState operations as HTTP handlers. Every handler runs
// under one mutex, so the state only ever sees one caller at a time.
type Server struct {
	mu      gosync.Mutex
	st      *state.AppState
	detach  func()
	storage *store.Storage
	saver   *appsync.Saver
	logger  *log.Logger
	stOpts  []state.Option
	engine  *gin.Engine
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	s := &Server{
		st:      opts.State,
		storage: opts.Storage,
		saver:   opts.Saver,
		logger:  opts.Logger,
		stOpts:  opts.StateOptions,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.st == nil {
		s.st = state.New(s.stOpts...)
	}
	if s.saver != nil {
		s.detach = s.saver.Attach(s.st)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.health)

	api := router.Group("/api")
	api.Use(s.serialize())
	{
		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.GET("/projects/:id", s.getProject)
		api.PATCH("/projects/:id", s.renameProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.POST("/projects/:id/archive", s.archiveProject)
		api.POST("/projects/:id/unarchive", s.unarchiveProject)

		api.GET("/selection", s.getSelection)
		api.PUT("/selection", s.setSelection)

		api.GET("/todos", s.listTodos)
		api.POST("/todos", s.createTodo)
		api.GET("/todos/:id", s.getTodo)
		api.PATCH("/todos/:id", s.updateTodo)
		api.DELETE("/todos/:id", s.deleteTodo)
		api.POST("/todos/:id/toggle", s.toggleTodo)
		api.POST("/todos/:id/move", s.moveTodo)
		api.POST("/todos/:id/checklist", s.addChecklistItem)
		api.POST("/todos/:id/checklist/:itemId/toggle", s.toggleChecklistItem)
		api.DELETE("/todos/:id/checklist/:itemId", s.removeChecklistItem)

		api.GET("/counts", s.counts)
		api.GET("/export", s.export)
		api.POST("/import", s.importState)
	}

	return router
}

// serialize holds the state mutex for the whole request.
func (s *Server) serialize() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

// health returns 200 if the process is alive.
func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// persist saves the state after a mutation. With an autosaver the write is
// deferred; without one it happens before the response.
func (s *Server) persist(ctx context.Context) error {
	if s.saver != nil || s.storage == nil {
		return nil
	}
	return s.storage.Save(ctx, s.st)
}

// Run listens on addr until ctx is cancelled, then shuts down and flushes
// the autosaver.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving %s: %w", addr, err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", "err", err)
	}
	return s.Close()
}

// Close detaches and flushes the autosaver.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	if s.saver == nil {
		return nil
	}
	s.saver.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.saver.Flush(ctx); err != nil {
		return fmt.Errorf("flushing state: %w", err)
	}
	return nil
}
