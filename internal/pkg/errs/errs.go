/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and carries a business code, a user-friendly message, and a Kind used to
classify the failure (validation, transport, delivery, sync, internal).
*/
package errs

import (
	"errors"
	"fmt"
	"strings"

	"coachchat/internal/pkg/logx"
)

// Kind classifies a CustomError into one of the failure categories the client
// reacts to: validation errors are surfaced inline, transport errors are absorbed
// into reconnection, delivery and sync errors are surfaced as notifications.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindDelivery   Kind = "delivery"
	KindSync       Kind = "sync"
	KindInternal   Kind = "internal"
)

// CustomError is the custom error structure used throughout the application.
// It wraps the Go error interface, adding a business code and failure kind.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Kind is the failure category this error belongs to.
	Kind Kind

	// Message is the user-friendly error description.
	Message string

	// cause is the underlying error, if any, preserved for logging and errors.Is/As chains.
	cause error
}

// Error implements the standard Go error interface. It returns a formatted
// error string containing the error code, kind, and message.
func (e CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("Error Code %d (%s): %s: %v", e.Code, e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("Error Code %d (%s): %s", e.Code, e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e CustomError) Unwrap() error {
	return e.cause
}

// NewError constructs and returns a new *CustomError instance based on a predefined error code.
// The optional details parameter allows for formatting arguments (printf-style) to be supplied
// for the error message. If an unknown code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Kind:    unknownErr.Kind,
			Message: unknownErr.Message,
		}
	}

	customErr := templateErr

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}

// Wrap constructs a *CustomError for the given code with the underlying cause attached.
func Wrap(code int, cause error) *CustomError {
	customErr := NewError(code)
	customErr.cause = cause
	return customErr
}

// KindOf returns the Kind of the first CustomError in the chain,
// or KindInternal if the error carries no classification.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain contains a CustomError of the given kind.
func IsKind(err error, kind Kind) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Kind == kind
}

// CodeOf returns the business code of the first CustomError in the chain, or ErrUnknown.
func CodeOf(err error) int {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code
	}
	return ErrUnknown
}
