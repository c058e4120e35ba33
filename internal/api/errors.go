package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/store"
)

// errBadRequest marks input the handler rejected before touching the state.
var errBadRequest = errors.New("bad request")

type badRequestError struct{ msg string }

func (e badRequestError) Error() string        { return e.msg }
func (e badRequestError) Is(target error) bool { return target == errBadRequest }

func badRequest(msg string) error {
	return badRequestError{msg: msg}
}

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case state.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, model.ErrInvalidPriority):
		return http.StatusBadRequest
	}
	switch store.KindOf(err) {
	case store.KindQuotaExceeded:
		return http.StatusInsufficientStorage
	case store.KindInvalidImport:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error body and logs server-side failures.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
