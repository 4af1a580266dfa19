package cookiestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

// KeyringJar keeps cookies in the OS keychain, one secret per origin.
type KeyringJar struct {
	Service string
	Origin  string

	mu  sync.Mutex
	now func() time.Time
}

// NewKeyringJar creates a jar for origin under the kemal keychain service.
func NewKeyringJar(origin string) *KeyringJar {
	return &KeyringJar{
		Service: "kemal",
		Origin:  origin,
		now:     time.Now,
	}
}

// Cookie implements Jar.
func (j *KeyringJar) Cookie() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load()
	if err != nil {
		return "", err
	}
	return FormatCookies(entries, j.now()), nil
}

// SetCookie implements Jar.
func (j *KeyringJar) SetCookie(line string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	entry, remove, err := ParseSetCookie(line, now)
	if err != nil {
		return err
	}

	entries, err := j.load()
	if err != nil {
		return err
	}
	entries = Upsert(entries, entry, remove)

	live := entries[:0]
	for _, e := range entries {
		if !e.Expired(now) {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		if err := keyring.Delete(j.Service, j.Origin); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("deleting keyring entry: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(live)
	if err != nil {
		return fmt.Errorf("marshaling cookies: %w", err)
	}
	if err := keyring.Set(j.Service, j.Origin, string(data)); err != nil {
		return fmt.Errorf("writing keyring entry: %w", err)
	}
	return nil
}

func (j *KeyringJar) load() ([]Entry, error) {
	secret, err := keyring.Get(j.Service, j.Origin)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading keyring entry: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(secret), &entries); err != nil {
		return nil, fmt.Errorf("parsing keyring entry: %w", err)
	}
	return entries, nil
}
