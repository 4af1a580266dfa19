package cliclient

import (
	"encoding/json"
	"strings"
)

// LoginRequest is the sign-in request body. Empty fields are omitted.
type LoginRequest struct {
	Name string `json:"name,omitempty"`
	Auth string `json:"auth,omitempty"`
}

// LoginResponse is the sign-in response body, on any status.
type LoginResponse struct {
	Token  json.RawMessage `json:"token,omitempty"`
	Errors ErrorList       `json:"errors,omitempty"`
}

// token returns the token when it is a non-empty JSON string.
func (r *LoginResponse) token() (string, bool) {
	if len(r.Token) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Token, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// rawToken renders the token field for InvalidTokenError.
func (r *LoginResponse) rawToken() string {
	var s string
	if strings.HasPrefix(string(r.Token), `"`) && json.Unmarshal(r.Token, &s) == nil {
		return s
	}
	return string(r.Token)
}

// ErrorList is the server's "errors" field. Besides an array of strings it
// accepts a bare string and non-string entries, which keep their JSON text.
type ErrorList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *ErrorList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = nil
		if single != "" {
			*l = ErrorList{single}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// null and other shapes carry no messages
		*l = nil
		return nil
	}

	out := make(ErrorList, 0, len(raw))
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err != nil {
			s = strings.TrimSpace(string(entry))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
