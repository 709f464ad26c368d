package translate

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is wrapped by AuthenticationError when no key is set.
var ErrMissingAPIKey = errors.New("API key is required")

// AuthenticationError means the credential is missing or was rejected.
type AuthenticationError struct {
	Provider Provider
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// TransportError covers every other failed call: network, rate limit,
// server error or an unusable response.
type TransportError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(
			"%s request failed (status %d): %v",
			e.Provider,
			e.StatusCode,
			e.Err,
		)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// classify wraps an SDK error given the HTTP status it carried (0 if none)
func classify(provider Provider, status int, err error) error {
	if isAuthStatus(status) {
		return &AuthenticationError{Provider: provider, Err: err}
	}
	return &TransportError{Provider: provider, StatusCode: status, Err: err}
}

// IsAuthentication reports whether err is an AuthenticationError.
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
