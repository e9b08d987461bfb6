package leaderboard

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error identifier.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeScoreInvalid      Code = "SCORE_INVALID"
	CodeUsernameInvalid   Code = "USERNAME_INVALID"
	CodeDuplicate         Code = "DUPLICATE_SUBMISSION"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeServer            Code = "SERVER_ERROR"
	CodeDatabase          Code = "DATABASE_ERROR"
)

// Error is returned by every Service operation that fails.
type Error struct {
	Code    Code
	Message string
	Status  int
	Details map[string]any
	Err     error // Underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("leaderboard: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("leaderboard: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, status int, msg string) *Error {
	return &Error{Code: code, Message: msg, Status: status}
}

// ValidationError reports malformed input.
func ValidationError(msg string, details map[string]any) *Error {
	e := newError(CodeValidation, http.StatusBadRequest, msg)
	e.Details = details
	return e
}

// NotFound reports a missing resource.
func NotFound(msg string) *Error {
	return newError(CodeNotFound, http.StatusNotFound, msg)
}

// RateLimited reports a client that submitted too often.
func RateLimited() *Error {
	return newError(CodeRateLimitExceeded, http.StatusTooManyRequests, "Too many requests")
}

func databaseError(op string, err error) *Error {
	e := newError(CodeDatabase, http.StatusInternalServerError, "Database operation failed")
	e.Err = fmt.Errorf("%s: %w", op, err)
	return e
}

// AsError converts any error into an *Error. Unknown errors become
// SERVER_ERROR with a generic message.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeServer,
		Message: "An unexpected error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// CodeOf returns the error code of err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return AsError(err).Code
}
