package core

import (
	"errors"
	"fmt"
)

// Error is a coded error carrying structured details for output records.
type Error struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// NewError wraps err with a code and optional details.
func NewError(err error, code string, details map[string]any) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Message: msg,
		Code:    code,
		Details: details,
		cause:   err,
	}
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsMap renders the error as an output-friendly map.
func (e *Error) AsMap() map[string]any {
	m := map[string]any{"message": e.Message}
	if e.Code != "" {
		m["code"] = e.Code
	}
	if len(e.Details) > 0 {
		m["details"] = e.Details
	}
	return m
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr, true
	}
	return nil, false
}
