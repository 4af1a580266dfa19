package store

import "fmt"

// LoadServer returns the saved server settings. A fresh store returns an
// empty Config.
func (s *Store) LoadServer() (*Config, error) {
	var cfg Config
	if err := s.db.First(&cfg, 1).Error; err != nil {
		return &Config{}, nil
	}
	return &cfg, nil
}

// SaveServer records the server the user logged in to.
func (s *Store) SaveServer(serverURL, signInPath, username string) error {
	cfg := &Config{ID: 1, ServerURL: serverURL, SignInPath: signInPath, Username: username}
	if err := s.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("saving server: %w", err)
	}
	return nil
}
