// Package cookiestore keeps the auth token in an origin-scoped cookie jar.
//
// A Jar mirrors the browser's document.cookie: reading returns every live
// cookie as "k=v; k2=v2" in document order, writing takes one Set-Cookie
// line with its attributes. The Adapter layers the token cookie on top.
package cookiestore

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nebari-dev/kemal/internal/utils"
)

// TokenCookieName is the cookie key the token is stored under.
const TokenCookieName = "auth"

// TokenMaxAge is the token cookie lifetime in seconds (one week).
var TokenMaxAge = utils.Days(7)

// Jar is read/write access to a persistent cookie store for one origin.
type Jar interface {
	// Cookie returns the live cookies as a "name=value; name=value" string.
	Cookie() (string, error)
	// SetCookie stores a single Set-Cookie line. Max-Age <= 0 removes the cookie.
	SetCookie(line string) error
}

// Adapter reads and writes the token cookie through a Jar.
type Adapter struct {
	jar Jar
}

// NewAdapter wraps jar.
func NewAdapter(jar Jar) *Adapter {
	return &Adapter{jar: jar}
}

// WriteToken stores value under the auth key with SameSite=Strict, Secure
// and a one week Max-Age. The value is percent-encoded so bytes that are not
// valid in a cookie survive the round trip through ReadToken.
func (a *Adapter) WriteToken(value string) error {
	c := &http.Cookie{
		Name:     TokenCookieName,
		Value:    EncodeValue(value),
		MaxAge:   TokenMaxAge,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if err := a.jar.SetCookie(c.String()); err != nil {
		return fmt.Errorf("writing token cookie: %w", err)
	}
	return nil
}

// ReadToken returns the stored token. ok is false when the cookie is
// missing or empty.
func (a *Adapter) ReadToken() (token string, ok bool, err error) {
	raw, err := a.jar.Cookie()
	if err != nil {
		return "", false, fmt.Errorf("reading cookies: %w", err)
	}
	token, ok = Lookup(raw, TokenCookieName)
	if !ok {
		return "", false, nil
	}
	return DecodeValue(token), true, nil
}

// ClearToken expires the token cookie.
func (a *Adapter) ClearToken() error {
	c := &http.Cookie{
		Name:     TokenCookieName,
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if err := a.jar.SetCookie(c.String()); err != nil {
		return fmt.Errorf("clearing token cookie: %w", err)
	}
	return nil
}

// EncodeValue percent-encodes v into cookie-safe octets. Token alphabets
// such as base64url and JWT pass through unchanged.
func EncodeValue(v string) string {
	return url.PathEscape(v)
}

// DecodeValue reverses EncodeValue. Values that are not valid escapes are
// returned as stored.
func DecodeValue(v string) string {
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}

// Pair is one key/value segment of a cookie string.
type Pair struct {
	Key   string
	Value string
}

// ParseCookieString splits a document.cookie style string into pairs in
// document order. Segments without '=' are skipped.
func ParseCookieString(raw string) []Pair {
	var pairs []Pair
	for _, segment := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(segment), "=")
		if !found {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs
}

// Lookup returns the first non-empty value stored under key.
func Lookup(raw, key string) (string, bool) {
	for _, p := range ParseCookieString(raw) {
		if p.Key == key && p.Value != "" {
			return p.Value, true
		}
	}
	return "", false
}
