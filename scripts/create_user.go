package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/nebari-dev/kemal/internal/config"
	"github.com/nebari-dev/kemal/internal/signin"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/create_user.go <username> <password> [notice...]")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]
	notices := os.Args[3:]

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	path := cfg.Server.UsersFile

	// Read existing users; a missing file starts empty
	users, err := signin.LoadUsers(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Failed to load users: %v", err)
		}
		users = nil
	}

	// Hash password
	passwordHash, err := signin.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users = signin.PutUser(users, signin.User{
		Name:         username,
		PasswordHash: passwordHash,
		Notices:      notices,
	})
	if err := signin.SaveUsers(path, users); err != nil {
		log.Fatalf("Failed to save users: %v", err)
	}

	fmt.Printf("User saved successfully!\n")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("File: %s\n", path)
}
