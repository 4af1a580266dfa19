package cookiestore

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Entry is a stored cookie. A zero Expires marks a session cookie.
type Entry struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// ParseSetCookie parses a Set-Cookie line relative to now. remove is true
// when the attributes ask for the cookie to be deleted.
func ParseSetCookie(line string, now time.Time) (entry Entry, remove bool, err error) {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parsing cookie %q: %w", cookieName(line), err)
	}

	entry = Entry{Name: c.Name, Value: c.Value}
	switch {
	case c.MaxAge < 0:
		return entry, true, nil
	case c.MaxAge > 0:
		entry.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		entry.Expires = c.Expires
	}
	return entry, entry.Expired(now), nil
}

// FormatCookies renders the live entries as a cookie string.
func FormatCookies(entries []Entry, now time.Time) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Expired(now) {
			continue
		}
		parts = append(parts, e.Name+"="+e.Value)
	}
	return strings.Join(parts, "; ")
}

// Upsert applies a parsed cookie to entries, keeping document order.
func Upsert(entries []Entry, entry Entry, remove bool) []Entry {
	for i := range entries {
		if entries[i].Name != entry.Name {
			continue
		}
		if remove {
			return append(entries[:i], entries[i+1:]...)
		}
		entries[i] = entry
		return entries
	}
	if remove {
		return entries
	}
	return append(entries, entry)
}

func cookieName(line string) string {
	name, _, _ := strings.Cut(line, "=")
	return strings.TrimSpace(name)
}
