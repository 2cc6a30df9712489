package api

import (
	"errors"
	"fmt"
)

// AuthError reports authentication failures: a missing token before any
// network call, a rejected credential pair, or a 401 that invalidated the
// stored session.
type AuthError struct {
	Status int // HTTP status, 0 when the request never left the client
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Reason)
}

// ErrMissingToken is the precondition failure for authenticated calls made
// without a stored token.
func ErrMissingToken() *AuthError {
	return &AuthError{Reason: "missing token"}
}

// ErrInvalidSession is returned after a 401 forces the session to be
// cleared.
func ErrInvalidSession() *AuthError {
	return &AuthError{Status: 401, Reason: "invalid session, please log in again"}
}

// DataFormatError reports an API payload whose shape the client cannot use.
type DataFormatError struct {
	Detail string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("unexpected API data format: %s", e.Detail)
}

// HTTPError reports a non-2xx response that is not an auth failure. Detail
// carries the server-provided message when one was decodable.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Message returns a user-facing string for the error, with specific
// wording for the statuses the UI distinguishes.
func (e *HTTPError) Message() string {
	switch e.Status {
	case 403:
		return "you do not have permission for this operation; admin rights are required"
	case 404:
		return "medication not found, or the API endpoint does not exist"
	case 500:
		return "a server error occurred; please try again later"
	default:
		if e.Detail != "" {
			return e.Detail
		}
		return e.Error()
	}
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusOf extracts the HTTP status from an AuthError or HTTPError, or 0.
func StatusOf(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Status
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
