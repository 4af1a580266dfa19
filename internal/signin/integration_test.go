package signin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nebari-dev/kemal/internal/cliclient"
	"github.com/nebari-dev/kemal/internal/cookiestore"
	"github.com/nebari-dev/kemal/internal/session"
)

func TestClientAgainstServer(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	s := session.New()
	var reported []error
	s.OnError(func(err error) { reported = append(reported, err) })
	jar := cookiestore.NewMemoryJar()
	c := cliclient.New(ts.URL, "", cliclient.WithSession(s), cliclient.WithJar(jar), cliclient.WithHTTPClient(ts.Client()))
	ctx := context.Background()

	// Rejected login keeps no token.
	_, err := c.Login(ctx, "alice", "wrong")
	var failed *cliclient.FailedLoginError
	if !errors.As(err, &failed) || failed.Detail != "bad credentials" {
		t.Fatalf("expected FailedLoginError with server detail, got %v", err)
	}

	token, err := c.Login(ctx, "alice", "pw")
	if err != nil || token == "" {
		t.Fatalf("Login() = (%q, %v)", token, err)
	}

	resp, err := c.Fetch(ctx, "/whoami", cliclient.Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	var who map[string]string
	if err := resp.JSON(&who); err != nil || who["name"] != "alice" {
		t.Fatalf("whoami = %s (%v)", resp.Text(), err)
	}

	// Same token, read back from the cookie by a client on a fresh session.
	fresh := cliclient.New(ts.URL, "", cliclient.WithSession(session.New()), cliclient.WithJar(jar), cliclient.WithHTTPClient(ts.Client()))
	resp, err = fresh.Fetch(ctx, ts.URL+"/whoami", cliclient.Options{})
	if err != nil || !resp.OK() {
		t.Fatalf("cookie-backed fetch failed: %v %s", err, resp.Text())
	}

	if len(reported) != 0 {
		t.Errorf("unexpected side-channel errors %v", reported)
	}
}

func TestClientReceivesNotices(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Router())
	defer ts.Close()

	s := session.New()
	var reported []error
	s.OnError(func(err error) { reported = append(reported, err) })
	c := cliclient.New(ts.URL, "", cliclient.WithSession(s), cliclient.WithJar(cookiestore.NewMemoryJar()), cliclient.WithHTTPClient(ts.Client()))

	if _, err := c.Login(context.Background(), "bob", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(reported) != 1 {
		t.Fatalf("expected one notice, got %v", reported)
	}
	var msg *cliclient.ServerMessage
	if !errors.As(reported[0], &msg) || msg.Message != "password expires in 3 days" {
		t.Errorf("unexpected report %v", reported[0])
	}
}

func TestCrossOriginFetchCarriesNoToken(t *testing.T) {
	api := httptest.NewServer(newTestServer(t).Router())
	defer api.Close()

	var leaked string
	thirdParty := httptest.NewServer(tokenRecorder(&leaked))
	defer thirdParty.Close()

	s := session.New()
	c := cliclient.New(api.URL, "", cliclient.WithSession(s), cliclient.WithJar(cookiestore.NewMemoryJar()))
	if _, err := c.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := c.Fetch(context.Background(), thirdParty.URL+"/collect", cliclient.Options{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if leaked != "" {
		t.Errorf("token leaked to third party: %q", leaked)
	}
}

// tokenRecorder records the X-Token header it receives.
func tokenRecorder(seen *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*seen = r.Header.Get(TokenHeader)
		json.NewEncoder(w).Encode(map[string]string{"ok": "true"})
	}
}
