package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindUnauthorized is a 401 from any endpoint. The token has been cleared.
	KindUnauthorized Kind = iota + 1
	// KindRequestFailed is any other non-2xx response, or a 2xx envelope reporting failure.
	KindRequestFailed
	// KindNetwork means no response reached the client.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRequestFailed:
		return "request failed"
	case KindNetwork:
		return "network error"
	default:
		return "unknown"
	}
}

var (
	// ErrUnauthorized matches errors of KindUnauthorized.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrRequestFailed matches errors of KindRequestFailed.
	ErrRequestFailed = errors.New("api: request failed")
	// ErrNetwork matches errors of KindNetwork.
	ErrNetwork = errors.New("api: network error")
	// ErrNoToken is wrapped in a KindUnauthorized error, without a network
	// call, when an endpoint requires auth and no token is held.
	ErrNoToken = errors.New("api: no access token")
)

// Error is the error returned for failed calls.
type Error struct {
	Kind     Kind
	Method   string
	Endpoint string
	// Status is the HTTP status code, 0 for network errors.
	Status int
	// Message is the server-provided message when the envelope carried one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("api: %s %s: %s: %v", e.Method, e.Endpoint, e.Kind, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("api: %s %s: %s: %v", e.Method, e.Endpoint, e.Kind, e.Err)
		}
		if e.Message != "" {
			return fmt.Sprintf("api: %s %s: %s (%d): %s", e.Method, e.Endpoint, e.Kind, e.Status, e.Message)
		}
		return fmt.Sprintf("api: %s %s: %s (%d)", e.Method, e.Endpoint, e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrRequestFailed:
		return e.Kind == KindRequestFailed
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// ServerMessage returns the server-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
