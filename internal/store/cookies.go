package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/nebari-dev/kemal/internal/cookiestore"
	"gorm.io/gorm"
)

// CookieJar is a cookiestore.Jar persisted in the store for one origin.
type CookieJar struct {
	store  *Store
	origin string
}

var _ cookiestore.Jar = (*CookieJar)(nil)

// Jar returns the cookie jar for origin.
func (s *Store) Jar(origin string) *CookieJar {
	return &CookieJar{store: s, origin: origin}
}

// Cookie implements cookiestore.Jar.
func (j *CookieJar) Cookie() (string, error) {
	now := j.store.now()

	var rows []Cookie
	err := j.store.db.
		Where("origin = ? AND (expires_at = 0 OR expires_at > ?)", j.origin, now.Unix()).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return "", fmt.Errorf("listing cookies: %w", err)
	}

	entries := make([]cookiestore.Entry, 0, len(rows))
	for _, row := range rows {
		entry := cookiestore.Entry{Name: row.Name, Value: row.Value}
		if row.ExpiresAt > 0 {
			entry.Expires = time.Unix(row.ExpiresAt, 0)
		}
		entries = append(entries, entry)
	}
	return cookiestore.FormatCookies(entries, now), nil
}

// SetCookie implements cookiestore.Jar.
func (j *CookieJar) SetCookie(line string) error {
	now := j.store.now()
	entry, remove, err := cookiestore.ParseSetCookie(line, now)
	if err != nil {
		return err
	}

	return j.store.db.Transaction(func(tx *gorm.DB) error {
		expired := tx.Where("origin = ? AND expires_at > 0 AND expires_at <= ?", j.origin, now.Unix())
		if err := expired.Delete(&Cookie{}).Error; err != nil {
			return fmt.Errorf("purging expired cookies: %w", err)
		}

		if remove {
			if err := tx.Where("origin = ? AND name = ?", j.origin, entry.Name).Delete(&Cookie{}).Error; err != nil {
				return fmt.Errorf("deleting cookie: %w", err)
			}
			return nil
		}

		var expiresAt int64
		if !entry.Expires.IsZero() {
			expiresAt = entry.Expires.Unix()
		}

		var row Cookie
		err := tx.Where("origin = ? AND name = ?", j.origin, entry.Name).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = Cookie{Origin: j.origin, Name: entry.Name, Value: entry.Value, ExpiresAt: expiresAt}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("creating cookie: %w", err)
			}
		case err != nil:
			return fmt.Errorf("loading cookie: %w", err)
		default:
			row.Value = entry.Value
			row.ExpiresAt = expiresAt
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("updating cookie: %w", err)
			}
		}
		return nil
	})
}
