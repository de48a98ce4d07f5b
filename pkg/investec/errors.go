package investec

import "fmt"

// APIError is the base error for everything that goes wrong while talking
// to the Investec API and cannot be classified more precisely - transport
// failures, malformed JSON on a success response and similar.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AuthError means the client could not obtain an access token.
// It is distinct from RequestError so that callers can tell
// "could not log in" from "logged in but this call failed".
type AuthError struct {
	APIError
}

func (e *AuthError) Unwrap() error {
	return &e.APIError
}

// RequestError means the server was reached but rejected the call.
// Body holds the parsed error payload when the server sent JSON.
type RequestError struct {
	APIError
	StatusCode int
	Body       map[string]interface{}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *RequestError) Unwrap() error {
	return &e.APIError
}

// RateLimitError is a RequestError with status 429. Callers may back off
// and retry - the client itself never retries.
type RateLimitError struct {
	RequestError
}

func (e *RateLimitError) Unwrap() error {
	return &e.RequestError
}
