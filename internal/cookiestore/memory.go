package cookiestore

import (
	"sync"
	"time"
)

// MemoryJar is a process-local Jar with browser expiry semantics.
type MemoryJar struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewMemoryJar creates an empty jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{now: time.Now}
}

// Cookie implements Jar.
func (j *MemoryJar) Cookie() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return FormatCookies(j.entries, j.now()), nil
}

// SetCookie implements Jar.
func (j *MemoryJar) SetCookie(line string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, remove, err := ParseSetCookie(line, j.now())
	if err != nil {
		return err
	}
	j.entries = Upsert(j.entries, entry, remove)
	return nil
}
