package cliclient

import (
	"errors"
	"fmt"
)

// Error is implemented by every way Login can fail. The set is closed:
// *NoCredentialsError, *FailedLoginError and *InvalidTokenError.
type Error interface {
	error
	loginError()
}

// NoCredentialsError is returned before any request when both the
// username and password are empty.
type NoCredentialsError struct{}

func (*NoCredentialsError) Error() string { return "no username or password supplied" }
func (*NoCredentialsError) loginError()   {}

// FailedLoginError is returned when the server rejects the login or its
// response cannot be used.
type FailedLoginError struct {
	User       string
	Detail     string
	StatusCode int
}

func (e *FailedLoginError) Error() string {
	return fmt.Sprintf("failed to log in %q: %s", e.User, e.Detail)
}
func (*FailedLoginError) loginError() {}

// InvalidTokenError is returned when a successful response carries no
// usable token. Raw holds the value the server sent.
type InvalidTokenError struct {
	Raw string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("got invalid token value '%s'", e.Raw)
}
func (*InvalidTokenError) loginError() {}

var (
	_ Error = (*NoCredentialsError)(nil)
	_ Error = (*FailedLoginError)(nil)
	_ Error = (*InvalidTokenError)(nil)
)

// TransportError is reported to the session's error handler when the
// sign-in request never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerMessage is an error entry the server sent along with a valid token.
type ServerMessage struct {
	User    string
	Message string
}

func (e *ServerMessage) Error() string {
	return fmt.Sprintf("server message for %q: %s", e.User, e.Message)
}

// IsNoCredentials returns true if err is a *NoCredentialsError.
func IsNoCredentials(err error) bool {
	var target *NoCredentialsError
	return errors.As(err, &target)
}

// IsFailedLogin returns true if err is a *FailedLoginError.
func IsFailedLogin(err error) bool {
	var target *FailedLoginError
	return errors.As(err, &target)
}

// IsInvalidToken returns true if err is an *InvalidTokenError.
func IsInvalidToken(err error) bool {
	var target *InvalidTokenError
	return errors.As(err, &target)
}
