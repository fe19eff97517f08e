// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error codes shared across the application. Codes are machine-readable and
// stable; messages are for people.
const (
	EINVALID   = "invalid"          // caller error, rejected before any network activity
	ESEARCH    = "search_failed"    // search request failed after retries
	EEMPTYSEL  = "empty_selection"  // batch retrieval with nothing selected
	ERETRIEVAL = "retrieval_failed" // document download failed; never auto-retried
	EDELIVERY  = "delivery_failed"  // artifact obtained but could not be handed off
	ENOTFOUND  = "not_found"        // entity does not exist
	EINTERNAL  = "internal"         // fallback for uncoded errors
)

// Error carries a machine-readable code alongside a human-readable message,
// optionally wrapping an underlying cause.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the failure.
	Message string

	// Err is the wrapped cause, nil when there is none.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a coded error from a format string.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapErr builds a coded error around an underlying cause.
func WrapErr(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrorCode returns the code of err, EINTERNAL for non-coded errors, and ""
// for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of err. Non-coded errors
// report a generic message so internal details never leak to end users.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "an internal error has occurred"
}
