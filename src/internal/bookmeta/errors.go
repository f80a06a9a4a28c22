package bookmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery reports an empty or unusable query; the caller's fault.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUpstreamUnavailable matches every *UpstreamError via errors.Is.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse matches every *MalformedError via errors.Is.
	ErrMalformedResponse = errors.New("malformed response")
)

// Reason classifies an UpstreamError.
type Reason string

const (
	ReasonTransport  Reason = "transport"
	ReasonHTTPStatus Reason = "http_status"
	ReasonTimeout    Reason = "timeout"
)

// UpstreamError is returned when a catalog could not be reached or answered
// with a non-2xx status.
type UpstreamError struct {
	Source     Source
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Reason == ReasonHTTPStatus:
		return fmt.Sprintf("%s: upstream unavailable: http %d", e.Source, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: upstream unavailable (%s): %v", e.Source, e.Reason, e.Err)
	default:
		return fmt.Sprintf("%s: upstream unavailable (%s)", e.Source, e.Reason)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// MalformedError is returned when a catalog payload does not have the
// expected document shape.
type MalformedError struct {
	Source Source
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: malformed response", e.Source)
	}
	return fmt.Sprintf("%s: malformed response: %v", e.Source, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedResponse }
