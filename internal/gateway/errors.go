package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a failed backend call
type Kind int

const (
	KindUnknown Kind = iota
	// KindTimeout: no answer within the configured bound
	KindTimeout
	// KindBackend: the backend answered with a failure status
	KindBackend
	// KindTransport: the backend could not be reached
	KindTransport
	// KindMalformed: success status but no usable answer
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindBackend:
		return "backend"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every failed gateway call
type Error struct {
	Kind       Kind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindBackend && e.StatusCode != 0:
		return fmt.Sprintf("trading bot returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("trading bot %s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("trading bot %s error", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details returns the upstream body decoded as JSON when possible, the raw
// body text otherwise, or the underlying error message.
func (e *Error) Details() any {
	if len(e.Body) > 0 {
		var v any
		if err := json.Unmarshal(e.Body, &v); err == nil {
			return v
		}
		return string(e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Error()
}

// KindOf returns the Kind of a gateway error, or KindUnknown
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err is a gateway timeout
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// classify wraps a transport-level failure
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}
