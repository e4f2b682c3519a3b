// Package api provides the typed client for the Phrase TMS REST API.
package api

import (
	"errors"
	"fmt"
)

// ErrTokenExpired indicates the server rejected the bearer token (HTTP 401).
// The cached token must be invalidated and no further authenticated calls
// attempted with it; the call is never retried with the same token.
var ErrTokenExpired = errors.New("token expired")

// AuthError indicates a login attempt was rejected by the server (wrong
// credentials, deactivated account). It is user-facing and not retried.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login rejected: status %d: %s", e.StatusCode, e.Body)
}

// APIError is any other non-2xx response from the API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsTokenExpired reports whether err stems from a 401 response.
func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsAuthError reports whether err is a rejected login.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
