// Package faults defines the failure taxonomy shared by the gateways and the harvester.
// Gateways attach these to their results instead of raising them, so a single
// failing upstream never aborts a run.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// TransportError is a network or timeout failure
	TransportError Kind = "transport_error"
	// UpstreamRejected is a non-success status from an upstream service
	UpstreamRejected Kind = "upstream_rejected"
	// MalformedResponse is a body with an unexpected shape
	MalformedResponse Kind = "malformed_response"
	// ValidationRejected marks content classified as irrelevant
	ValidationRejected Kind = "validation_rejected"
	// ExtractionPartial marks a record with one or more defaulted fields
	ExtractionPartial Kind = "extraction_partial"
	// AuthRequired marks a detected login barrier
	AuthRequired Kind = "auth_required"
	// SessionClosed marks a terminated page session
	SessionClosed Kind = "session_closed"
	// Unknown is used by KindOf for errors outside the taxonomy
	Unknown Kind = "unknown"
)

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Op     string
	URL    string
	Status int
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.URL != "" {
		msg += " for " + e.URL
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Transport wraps a network failure.
func Transport(op, url string, cause error) *Error {
	return &Error{Kind: TransportError, Op: op, URL: url, Cause: cause}
}

// Rejected records a non-success status.
func Rejected(op, url string, status int) *Error {
	return &Error{Kind: UpstreamRejected, Op: op, URL: url, Status: status}
}

// Malformed wraps a body decoding or shape failure.
func Malformed(op, url string, cause error) *Error {
	return &Error{Kind: MalformedResponse, Op: op, URL: url, Cause: cause}
}

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
