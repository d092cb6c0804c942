package sdk

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultLoginFailureMessage is shown when the backend gives no usable message.
const DefaultLoginFailureMessage = "Login failed. Please try again."

var (
	// ErrUnauthorized is wrapped by APIError when the backend answered 401.
	// By the time a caller sees it the session has already been torn down.
	ErrUnauthorized = errors.New("unauthorized: session expired or revoked")

	// ErrMalformedLoginResponse is the cause of a LoginError for a 2xx login
	// response without a token or user.
	ErrMalformedLoginResponse = errors.New("authorization token missing in response")

	// ErrNotAuthenticated is returned by API calls attempted without a session.
	ErrNotAuthenticated = errors.New("not logged in")
)

// LoginError reports a rejected credential exchange. Message is safe to show to the user.
type LoginError struct {
	Role    Role
	Status  int
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s login failed (HTTP %d): %s", e.Role, e.Status, e.Message)
	}
	return fmt.Sprintf("%s login failed: %s", e.Role, e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response from an authenticated endpoint.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// ValidationError collects client-side field validation failures, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}
