package hf

import (
	"fmt"
	"net/http"
)

// APIError is any transport or non-2xx failure from the model endpoint.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model endpoint: %v", e.Err)
	}
	return fmt.Sprintf("model endpoint http %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// AuthRejected reports whether the endpoint refused the configured credential.
func (e *APIError) AuthRejected() bool {
	return e != nil && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// RateLimited reports whether the endpoint throttled the request.
func (e *APIError) RateLimited() bool {
	return e != nil && e.StatusCode == http.StatusTooManyRequests
}
