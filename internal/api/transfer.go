package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todomaster/internal/state"
)

// maxImportBytes bounds the request body of an import.
const maxImportBytes = 16 << 20

var errNoStorage = errors.New("no storage configured")

// export returns the stored document verbatim after writing any pending
// changes.
func (s *Server) export(c *gin.Context) {
	if s.storage == nil {
		s.fail(c, errNoStorage)
		return
	}
	ctx := c.Request.Context()
	if s.saver != nil {
		if err := s.saver.Flush(ctx); err != nil {
			s.fail(c, err)
			return
		}
	}
	text, err := s.storage.Export(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="todomaster.json"`)
	c.Data(http.StatusOK, "application/json", []byte(text))
}

// importState replaces the stored document and the live state with the
// request body. A rejected document changes nothing.
func (s *Server) importState(c *gin.Context) {
	if s.storage == nil {
		s.fail(c, errNoStorage)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		s.fail(c, badRequest("reading body: "+err.Error()))
		return
	}
	ctx := c.Request.Context()

	// Pending edits to the old state must land before the import overwrites them.
	if s.saver != nil {
		if err := s.saver.Flush(ctx); err != nil {
			s.fail(c, err)
			return
		}
	}
	if err := s.storage.Import(ctx, string(body)); err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.storage.Load(ctx, s.stOpts...)
	if err != nil {
		s.fail(c, err)
		return
	}
	if st == nil {
		st = state.New(s.stOpts...)
	}

	if s.detach != nil {
		s.detach()
	}
	s.st = st
	if s.saver != nil {
		s.detach = s.saver.Attach(st)
	}
	s.logger.Info("state replaced by import", "projects", len(st.Projects()), "todos", st.Len())
	c.JSON(http.StatusOK, gin.H{"projects": len(st.Projects()), "todos": st.Len()})
}
