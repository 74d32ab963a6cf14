// Package errors provides error handling for cpisync.
//
// This package re-exports github.com/cockroachdb/errors and adds the run
// error taxonomy: every failure that aborts a sync run carries a Code so the
// caller can tell a broken transport from a rejected query or a malformed
// payload.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	return errors.RequestFailed("%d", resp.StatusCode)
//
//	if errors.CodeOf(err) == errors.CodeRequestInvalid {
//	    // source rejected the query
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Code classifies why a run was aborted.
type Code string

const (
	// CodeRequestFailed is a transport failure or a non-success HTTP status.
	CodeRequestFailed Code = "request_failed"

	// CodeRequestInvalid means the source accepted the request but reported
	// an error in its JSON status envelope.
	CodeRequestInvalid Code = "request_invalid"

	// CodeParseError is a malformed or unexpected payload.
	CodeParseError Code = "parse_error"
)

// RunError is a classified run failure.
type RunError struct {
	Code    Code
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RequestFailed returns a request_failed error with a formatted message.
func RequestFailed(format string, args ...interface{}) error {
	return crdb.WithStack(&RunError{Code: CodeRequestFailed, Message: fmt.Sprintf(format, args...)})
}

// RequestInvalid returns a request_invalid error carrying the source's message.
func RequestInvalid(message string) error {
	return crdb.WithStack(&RunError{Code: CodeRequestInvalid, Message: message})
}

// ParseError returns a parse_error with a formatted message.
func ParseError(format string, args ...interface{}) error {
	return crdb.WithStack(&RunError{Code: CodeParseError, Message: fmt.Sprintf(format, args...)})
}

// CodeOf returns the Code of the first RunError in err's chain, or "" if
// there is none.
func CodeOf(err error) Code {
	var re *RunError
	if err != nil && As(err, &re) {
		return re.Code
	}
	return ""
}

// MessageOf returns the Message of the first RunError in err's chain.
func MessageOf(err error) string {
	var re *RunError
	if err != nil && As(err, &re) {
		return re.Message
	}
	return ""
}
