package sleeper

import "fmt"

// FetchKind classifies why a request to the draft source failed
type FetchKind string

const (
	KindTransport FetchKind = "transport"
	KindStatus    FetchKind = "status"
	KindPayload   FetchKind = "payload"
)

// FetchError is returned for every failed request.
// All kinds are handled the same way by callers; Kind is for logging.
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	case KindPayload:
		return fmt.Sprintf("Invalid response format: %v", e.Err)
	default:
		return fmt.Sprintf("Request failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
