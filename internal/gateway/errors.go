package gateway

type ErrorKind string

const (
	// KindTransport covers non-2xx responses from the analysis service.
	KindTransport ErrorKind = "transport"
	// KindNetwork covers failures before any HTTP status was received.
	KindNetwork ErrorKind = "network"
)

// APIError is the single error type for both remote operations. Both kinds
// are recoverable: the message is surfaced to the user as text.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}
