package cliclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nebari-dev/kemal/internal/cookiestore"
	"github.com/nebari-dev/kemal/internal/session"
)

// recordedCall is one request seen by a fake transport.
type recordedCall struct {
	URL  string
	Opts Options
}

// fakeTransport records calls and answers with a fixed response or error.
type fakeTransport struct {
	calls []recordedCall
	resp  *Response
	err   error
}

func (f *fakeTransport) Do(_ context.Context, url string, opts Options) (*Response, error) {
	f.calls = append(f.calls, recordedCall{URL: url, Opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &Response{StatusCode: http.StatusOK}, nil
	}
	return f.resp, nil
}

func respond(status int, body string) *Response {
	return &Response{StatusCode: status, Body: []byte(body)}
}

func newTestClient(t *testing.T, host string, tr Transport, opts ...Option) (*Client, *session.Session, *cookiestore.MemoryJar) {
	t.Helper()
	s := session.New()
	s.OnError(func(err error) { t.Logf("side-channel error: %v", err) })
	jar := cookiestore.NewMemoryJar()
	opts = append([]Option{WithTransport(tr), WithSession(s), WithJar(jar)}, opts...)
	return New(host, "", opts...), s, jar
}

func TestNewResolvesSignInURL(t *testing.T) {
	tests := []struct {
		host string
		path string
		want string
	}{
		{"https://api.example.com", "", "https://api.example.com/sign_in"},
		{"https://api.example.com/", "api/login", "https://api.example.com/api/login"},
		{"https://api.example.com//", "/api/login", "https://api.example.com/api/login"},
		{"https://api.example.com/v1", "/sign_in", "https://api.example.com/v1/sign_in"},
		{"https://api.example.com", "//double", "https://api.example.com/double"},
		{"", "", "/sign_in"},
		{"/", "login", "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.host+"+"+tt.path, func(t *testing.T) {
			c := New(tt.host, tt.path, WithTransport(&fakeTransport{}))
			if got := c.SignInURL(); got != tt.want {
				t.Errorf("SignInURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewNormalizesHost(t *testing.T) {
	c := New("https://api.example.com///", "", WithTransport(&fakeTransport{}))
	if c.Host() != "https://api.example.com/" {
		t.Errorf("Host() = %q", c.Host())
	}
}

func TestClientsShareDefaultSession(t *testing.T) {
	a := New("https://a.example.com", "", WithTransport(&fakeTransport{}))
	b := New("https://b.example.com", "", WithTransport(&fakeTransport{}))
	if a.Session() != session.Default || b.Session() != session.Default {
		t.Fatal("expected clients without WithSession to share session.Default")
	}
}

func TestFetchAttachesTokenByOrigin(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/same-origin/x", true},
		{"https://api.example.com/items", true},
		{"https://API.example.com/items", true},
		{"https://api.example.com", true},
		{"https://other-origin.com/x", false},
		{"//other-origin.com/x", false},
		{"http://api.example.com/items", false},
		{"https://api.example.com.evil.com/x", false},
		{"relative/no/slash", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			tr := &fakeTransport{}
			c, s, _ := newTestClient(t, "https://api.example.com", tr)
			s.Commit("abc123")

			if _, err := c.Fetch(context.Background(), tt.target, Options{}); err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			got := tr.calls[0].Opts.Headers.Get(TokenHeader)
			if tt.want && got != "abc123" {
				t.Errorf("expected %s header, got %q", TokenHeader, got)
			}
			if !tt.want && got != "" {
				t.Errorf("expected no %s header, got %q", TokenHeader, got)
			}
		})
	}
}

func TestFetchWithoutTokenAddsNoHeader(t *testing.T) {
	tr := &fakeTransport{}
	c, _, _ := newTestClient(t, "https://api.example.com", tr)

	if _, err := c.Fetch(context.Background(), "/x", Options{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := tr.calls[0].Opts.Headers[TokenHeader]; ok {
		t.Error("expected no token header when no token is held")
	}
}

func TestFetchPassesArgumentsThrough(t *testing.T) {
	tr := &fakeTransport{resp: respond(http.StatusTeapot, "short and stout")}
	c, s, _ := newTestClient(t, "https://api.example.com", tr)
	s.Commit("abc123")

	headers := http.Header{"Accept": {"text/plain"}}
	resp, err := c.Fetch(context.Background(), "/brew", Options{
		Method:  http.MethodPut,
		Headers: headers,
		Body:    []byte("leaves"),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.StatusCode != http.StatusTeapot || resp.Text() != "short and stout" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, resp.Text())
	}

	call := tr.calls[0]
	if call.URL != "/brew" || call.Opts.Method != http.MethodPut || string(call.Opts.Body) != "leaves" {
		t.Errorf("arguments were altered: %+v", call)
	}
	if call.Opts.Headers.Get("Accept") != "text/plain" {
		t.Errorf("caller header lost: %v", call.Opts.Headers)
	}
	if _, ok := headers[TokenHeader]; ok {
		t.Error("Fetch mutated the caller's header map")
	}
}

func TestTokenFallsBackToCookie(t *testing.T) {
	c, s, jar := newTestClient(t, "https://api.example.com", &fakeTransport{})

	if c.Token() != "" {
		t.Fatalf("expected no token, got %q", c.Token())
	}

	// A fresh process: memory state is gone but the cookie survived.
	if err := cookiestore.NewAdapter(jar).WriteToken("from-cookie"); err != nil {
		t.Fatalf("WriteToken: %v", err)
	}
	if c.Token() != "from-cookie" {
		t.Fatalf("expected cookie fallback, got %q", c.Token())
	}

	s.Commit("from-memory")
	if c.Token() != "from-memory" {
		t.Fatalf("expected session token first, got %q", c.Token())
	}
}

func TestNewRequestDecorates(t *testing.T) {
	c, s, _ := newTestClient(t, "https://api.example.com", &fakeTransport{})
	s.Commit("abc123")

	req, err := c.NewRequest(context.Background(), http.MethodGet, "https://api.example.com/things", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.Header.Get(TokenHeader) != "abc123" {
		t.Errorf("expected token header on same-host request")
	}

	req, err = c.NewRequest(context.Background(), http.MethodGet, "https://other-origin.com/x", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.Header.Get(TokenHeader) != "" {
		t.Errorf("expected no token header on cross-origin request")
	}
}

func TestNewRequestResolvesRelativePaths(t *testing.T) {
	var gotToken, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(TokenHeader)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	s := session.New()
	s.Commit("abc123")
	c := New(ts.URL, "", WithSession(s), WithJar(cookiestore.NewMemoryJar()), WithHTTPClient(ts.Client()))

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/items/1", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotPath != "/items/1" || gotToken != "abc123" {
		t.Errorf("server saw path %q token %q", gotPath, gotToken)
	}
}

func TestMatcherPolicies(t *testing.T) {
	host := "https://api.example.com/"
	tests := []struct {
		name    string
		match   Matcher
		target  string
		allowed bool
	}{
		{"exact host", MatchExactHost, "https://api.example.com", true},
		{"exact host with slash", MatchExactHost, "https://api.example.com/", true},
		{"exact rejects paths", MatchExactHost, "https://api.example.com/x", false},
		{"exact rejects relative", MatchExactHost, "/x", false},
		{"prefix under host", MatchHostPrefix, "https://api.example.com/x/y", true},
		{"prefix rejects lookalike", MatchHostPrefix, "https://api.example.com.evil.com/", false},
		{"relative same origin", MatchHostOrRelative, "/x", true},
		{"relative host only allows paths", MatchHostOrRelative, "https://api.example.com/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match(host, tt.target); got != tt.allowed {
				t.Errorf("match(%q, %q) = %v, want %v", host, tt.target, got, tt.allowed)
			}
		})
	}

	if MatchHostOrRelative("/", "https://api.example.com/x") {
		t.Error("a same-origin client must not match absolute URLs")
	}
}

func TestMatchHostOrRelativeDefaultPorts(t *testing.T) {
	tests := []struct {
		host    string
		target  string
		allowed bool
	}{
		{"https://api.example.com/", "https://api.example.com:443/x", true},
		{"https://api.example.com:443/", "https://api.example.com/x", true},
		{"http://api.example.com/", "http://API.example.com:80/x", true},
		{"https://api.example.com/", "https://api.example.com:8443/x", false},
		{"https://api.example.com/", "http://api.example.com:443/x", false},
		{"http://localhost:8470/", "http://localhost:8470/whoami", true},
		{"http://localhost:8470/", "http://localhost/whoami", false},
	}
	for _, tt := range tests {
		if got := MatchHostOrRelative(tt.host, tt.target); got != tt.allowed {
			t.Errorf("MatchHostOrRelative(%q, %q) = %v, want %v", tt.host, tt.target, got, tt.allowed)
		}
	}
}

func TestWithMatcher(t *testing.T) {
	tr := &fakeTransport{}
	c, s, _ := newTestClient(t, "https://api.example.com", tr, WithMatcher(MatchExactHost))
	s.Commit("abc123")

	if _, err := c.Fetch(context.Background(), "/x", Options{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tr.calls[0].Opts.Headers.Get(TokenHeader) != "" {
		t.Error("exact matcher should not decorate relative paths")
	}
}

func TestMatcherByName(t *testing.T) {
	for _, name := range []string{"", "host_or_relative", "exact", "prefix"} {
		if MatcherByName(name) == nil {
			t.Errorf("MatcherByName(%q) = nil", name)
		}
	}
	if MatcherByName("bogus") != nil {
		t.Error("expected nil for unknown matcher")
	}
}
