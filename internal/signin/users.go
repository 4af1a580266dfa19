package signin

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// User is an account the sign-in server accepts.
type User struct {
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
	// Notices are sent in "errors" alongside a successful login.
	Notices []string `yaml:"notices,omitempty"`
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// LoadUsers reads a YAML users file.
func LoadUsers(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}
	for i, u := range f.Users {
		if u.Name == "" {
			return nil, fmt.Errorf("user %d has no name", i)
		}
	}
	return f.Users, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches the hash
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SaveUsers writes users to path, replacing the file.
func SaveUsers(path string, users []User) error {
	data, err := yaml.Marshal(usersFile{Users: users})
	if err != nil {
		return fmt.Errorf("encoding users file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing users file: %w", err)
	}
	return nil
}

// PutUser replaces the user with the same name or appends u.
func PutUser(users []User, u User) []User {
	for i := range users {
		if users[i].Name == u.Name {
			users[i] = u
			return users
		}
	}
	return append(users, u)
}
