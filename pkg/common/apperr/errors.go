package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error codes for the kinds of failure the storage engine and its wire
// protocol can produce (see SPEC_FULL.md §7).
const (
	CodeNotFound         = 1001
	CodeCapacityExceeded = 1002
	CodeInvalidKey       = 1003
	CodeIndexFull        = 1004
	CodeCorruptArena     = 1005
	CodeIOFailure        = 1006
	CodeNotImplemented   = 1007
)

// AppError is a wrapped error carrying a stable code and the HTTP status the
// request handler contract (C10) should answer with.
type AppError struct {
	cause      error
	Message    string
	Code       int
	HTTPStatus int
}

// New creates an AppError wrapping cause, which may be nil.
func New(code int, msg string, httpStatus int, cause error) *AppError {
	return &AppError{
		cause:      cause,
		Message:    msg,
		Code:       code,
		HTTPStatus: httpStatus,
	}
}

// Wrap attaches code/message/status to an existing error, preserving it as
// the cause so errors.Is/errors.As still see through to it.
func Wrap(cause error, code int, msg string, httpStatus int) *AppError {
	if cause == nil {
		return nil
	}
	return &AppError{
		cause:      errors.WithMessage(cause, msg),
		Message:    msg,
		Code:       code,
		HTTPStatus: httpStatus,
	}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// NotFound builds the 404 case: a key absent from the index.
func NotFound(key string) *AppError {
	return New(CodeNotFound, MsgNotFound, http.StatusNotFound, nil)
}

// CapacityExceeded builds the 500 case: the heap had no fitting free block.
func CapacityExceeded() *AppError {
	return New(CodeCapacityExceeded, "arena out of space", http.StatusInternalServerError, nil)
}

// IndexFull builds the 500 case: the slot bitmap had no free slot.
func IndexFull() *AppError {
	return New(CodeIndexFull, "slot index exhausted", http.StatusInternalServerError, nil)
}

// InvalidKey builds the case for an empty or otherwise rejected key.
func InvalidKey() *AppError {
	return New(CodeInvalidKey, "key must be non-empty", http.StatusInternalServerError, nil)
}

// IOFailure wraps a snapshot save/load error.
func IOFailure(err error) *AppError {
	return Wrap(err, CodeIOFailure, "snapshot I/O failed", http.StatusInternalServerError)
}

// NotImplemented builds the 501 case: unknown method or plugin.
func NotImplemented() *AppError {
	return New(CodeNotImplemented, "not implemented", http.StatusNotImplemented, nil)
}
