// Package apperrors defines the failure conditions callers can act on:
// rephrase the request, retry later, or accept an empty answer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors. Match with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnparseableRange   = errors.New("unparseable range")
	ErrEmptyRange         = errors.New("empty range")
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrReplyUnavailable is a ServiceUnavailable that happened after the
	// sentiment was already committed.
	ErrReplyUnavailable = fmt.Errorf("reply unavailable: %w", ErrServiceUnavailable)
)

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnparseableRange   = "UNPARSEABLE_RANGE"
	CodeEmptyRange         = "EMPTY_RANGE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeReplyUnavailable   = "REPLY_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError carries a machine readable code alongside the sentinel it
// belongs to and, optionally, the underlying cause.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// InvalidInput reports empty or malformed text, counts or dates.
func InvalidInput(format string, args ...any) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidInput,
	}
}

// UnparseableRange reports a query no date pattern recognized.
func UnparseableRange(query string) *AppError {
	return &AppError{
		Code:    CodeUnparseableRange,
		Message: fmt.Sprintf("no date range recognized in %q", query),
		Err:     ErrUnparseableRange,
	}
}

// EmptyRange reports a resolved range without a single eligible day.
func EmptyRange(start, end time.Time) *AppError {
	return &AppError{
		Code:    CodeEmptyRange,
		Message: fmt.Sprintf("range %s to %s covers no days", start.Format(time.RFC3339), end.Format(time.RFC3339)),
		Err:     ErrEmptyRange,
	}
}

// ServiceUnavailable wraps a failed or malformed call to an external service.
func ServiceUnavailable(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeServiceUnavailable,
		Message: fmt.Sprintf("%s call failed", service),
		Err:     ErrServiceUnavailable,
		Cause:   cause,
	}
}

// ReplyUnavailable wraps a reply generation failure for an already
// classified review.
func ReplyUnavailable(cause error) *AppError {
	return &AppError{
		Code:    CodeReplyUnavailable,
		Message: "reply generation failed",
		Err:     ErrReplyUnavailable,
		Cause:   cause,
	}
}

// Code returns the most specific code for err.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrReplyUnavailable):
		return CodeReplyUnavailable
	case errors.Is(err, ErrServiceUnavailable):
		return CodeServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrUnparseableRange):
		return CodeUnparseableRange
	case errors.Is(err, ErrEmptyRange):
		return CodeEmptyRange
	default:
		return CodeInternal
	}
}

// HTTPStatus maps err onto a response status for the HTTP API.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnparseableRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
