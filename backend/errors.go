package backend

import "fmt"

// Kind classifies a transport failure. Each kind maps to exactly one
// user-visible message; none is retried automatically.
type Kind string

const (
	KindAuth      Kind = "auth"
	KindTimeout   Kind = "timeout"
	KindNetwork   Kind = "network"
	KindMalformed Kind = "malformed"
)

// TransportError wraps every backend-facing failure with its kind and,
// when the request reached the server, the HTTP status.
type TransportError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s error: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage renders the single human-readable notice for this failure.
func (e *TransportError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "API key authentication failed. Please check your API_KEY configuration."
	case KindTimeout:
		return "Request timed out. Please try again."
	case KindMalformed:
		return fmt.Sprintf("Failed to parse the API response: %v", e.Err)
	default:
		return fmt.Sprintf("Network error: %v", e.Err)
	}
}
