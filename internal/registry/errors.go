package registry

import "fmt"

// TransportError reports that a registry could not be reached at all: DNS
// failure, refused connection, or a deadline expiring mid-request.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry unreachable: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError reports a non-2xx response. Retryable distinguishes upstream
// faults (5xx) from client faults (4xx); the client itself never retries,
// retry policy belongs to the caller.
type ResponseError struct {
	URL        string
	StatusCode int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("registry rejected request: %s: status %d", e.URL, e.StatusCode)
}

func (e *ResponseError) Retryable() bool { return e.StatusCode >= 500 }

// MalformedError reports a 2xx response whose body was not decodable as the
// expected charset.
type MalformedError struct {
	URL string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("registry response not valid UTF-8: %s", e.URL)
}
