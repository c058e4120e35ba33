package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a StorageError.
type ErrorKind int

const (
	// KindWrite is any failed write that is not a capacity problem.
	KindWrite ErrorKind = iota + 1
	// KindQuotaExceeded means the payload or the backend ran out of room.
	KindQuotaExceeded
	// KindRead is a failed read of the slot.
	KindRead
	// KindInvalidImport rejects an import document before anything is written.
	KindInvalidImport
)

func (k ErrorKind) String() string {
	switch k {
	case KindWrite:
		return "write failed"
	case KindQuotaExceeded:
		return "quota exceeded"
	case KindRead:
		return "read failed"
	case KindInvalidImport:
		return "invalid import"
	default:
		return fmt.Sprintf("storage error(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against a StorageError of the same kind.
var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidImport = errors.New("invalid import data")
)

// StorageError is returned by every Storage operation that fails.
type StorageError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.Kind == KindQuotaExceeded
	case ErrInvalidImport:
		return e.Kind == KindInvalidImport
	}
	return false
}

// KindOf returns the kind of the StorageError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
