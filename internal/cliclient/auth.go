package cliclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Login signs in with username and password and stores the returned token
// in the session and the cookie jar. Either credential may be empty, not
// both.
//
// Failures are returned as an Error. When the request never gets a
// response the fault goes to the session's error handler instead and Login
// returns "" with a nil error.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" && password == "" {
		return "", &NoCredentialsError{}
	}

	body, err := json.Marshal(LoginRequest{Name: username, Auth: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	slog.Debug("Signing in", "url", c.signInURL, "username", username)
	resp, err := c.transport.Do(ctx, c.signInURL, Options{
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.session.Report(&TransportError{URL: c.signInURL, Err: err})
		return "", nil
	}

	token, err := c.interpret(username, resp)
	if err != nil {
		slog.Debug("Sign-in rejected", "url", c.signInURL, "status", resp.StatusCode, "error", err)
		return "", err
	}

	c.session.Commit(token)
	if err := c.cookies.WriteToken(token); err != nil {
		c.session.Report(err)
	}
	return token, nil
}

// interpret turns a sign-in response into a token or a login error.
// Server messages sent alongside a valid token are reported, not returned.
func (c *Client) interpret(username string, resp *Response) (string, error) {
	var payload LoginResponse
	parseErr := resp.JSON(&payload)

	if !resp.OK() || parseErr != nil {
		var errs []string
		if parseErr == nil {
			errs = payload.Errors
		}
		return "", &FailedLoginError{
			User:       username,
			Detail:     failureDetail(resp, errs),
			StatusCode: resp.StatusCode,
		}
	}

	token, ok := payload.token()
	if !ok {
		if len(payload.Errors) > 0 {
			return "", &FailedLoginError{
				User:       username,
				Detail:     failureDetail(resp, payload.Errors),
				StatusCode: resp.StatusCode,
			}
		}
		return "", &InvalidTokenError{Raw: payload.rawToken()}
	}

	for _, msg := range payload.Errors {
		c.session.Report(&ServerMessage{User: username, Message: msg})
	}
	return token, nil
}

// failureDetail picks the first available description: the server's
// errors, then the body text, then the status code.
func failureDetail(resp *Response, errs []string) string {
	if len(errs) > 0 {
		return strings.Join(errs, "; ")
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text
	}
	return fmt.Sprintf("status code %d", resp.StatusCode)
}

// Logout drops the token from the session and expires the cookie.
func (c *Client) Logout() error {
	c.session.Clear()
	return c.cookies.ClearToken()
}
