package server

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nebari-dev/kemal/internal/signin"
)

func writeUsers(t *testing.T) string {
	t.Helper()
	hash, err := signin.HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "users.yaml")
	data := fmt.Sprintf("users:\n  - name: alice\n    password_hash: %q\n", hash)
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunServesSignIn(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KEMAL_LOG_LEVEL", "error")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	usersFile := writeUsers(t)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Config{UsersFile: usersFile, Listener: ln})
	}()

	url := "http://" + ln.Addr().String() + "/sign_in"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Post(url, "application/json", bytes.NewBufferString(`{"name":"alice","auth":"pw"}`))
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunMissingUsersFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KEMAL_LOG_LEVEL", "error")

	err := Run(context.Background(), Config{UsersFile: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing users file")
	}
}
