package api

import (
	"errors"
	"fmt"
)

// AuthReason tells why a call was refused for authentication
type AuthReason string

const (
	// ReasonMissingToken means no token was stored; no request was sent
	ReasonMissingToken AuthReason = "missing_token"
	// ReasonUnauthorized means the backend answered 401 or 422
	ReasonUnauthorized AuthReason = "unauthorized"
)

// AuthError reports an authentication failure. Callers route it to the
// auth boundary, which clears local state and sends the user to login.
type AuthError struct {
	Status        int
	Reason        AuthReason
	ServerMessage string
}

func (e *AuthError) Error() string {
	if e.Reason == ReasonMissingToken {
		return "please log in"
	}
	return "please log in again"
}

// HTTPError is any other non-2xx response
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newHTTPError(status int, serverMessage string) *HTTPError {
	if serverMessage == "" {
		serverMessage = fmt.Sprintf("HTTP %d", status)
	}
	return &HTTPError{Status: status, Message: serverMessage}
}

// IsAuthError reports whether err carries an *AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
