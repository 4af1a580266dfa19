// Package store keeps client state for the kemal CLI in a local SQLite
// database: the cookie jar and the last server logged in to.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store manages the local kemal SQLite database via GORM.
type Store struct {
	db      *gorm.DB
	dataDir string
	now     func() time.Time
}

// New creates a Store using the default platform data directory.
func New() (*Store, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("determining data directory: %w", err)
	}
	return Open(dataDir)
}

// Open creates a Store with a specific data directory.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "kemal.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode
	db.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(&Config{}, &Cookie{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	// Seed singleton row
	db.Exec("INSERT OR IGNORE INTO store_config (id) VALUES (1)")

	return &Store{db: db, dataDir: dataDir, now: time.Now}, nil
}

// DB returns the underlying GORM DB for advanced queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// DataDir returns the store's data directory.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DefaultDataDir returns ~/.local/share/kemal/ on Linux, platform equivalent elsewhere.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("KEMAL_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "kemal"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "kemal"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "kemal"), nil
	default:
		return filepath.Join(home, ".local", "share", "kemal"), nil
	}
}

// Config is a singleton table holding the server last logged in to.
type Config struct {
	ID         int    `gorm:"primarykey"`
	ServerURL  string `gorm:"not null;default:''"`
	SignInPath string `gorm:"not null;default:''"`
	Username   string `gorm:"not null;default:''"`
}

func (Config) TableName() string { return "store_config" }

// Cookie is one stored cookie. ExpiresAt is a Unix time, 0 for session cookies.
type Cookie struct {
	ID        uint   `gorm:"primarykey"`
	Origin    string `gorm:"not null;uniqueIndex:idx_cookie_origin_name"`
	Name      string `gorm:"not null;uniqueIndex:idx_cookie_origin_name"`
	Value     string `gorm:"not null;default:''"`
	ExpiresAt int64  `gorm:"not null;default:0"`
}

func (Cookie) TableName() string { return "store_cookies" }
