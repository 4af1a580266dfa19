// Package cliclient logs in against a sign-in endpoint and attaches the
// resulting token to later requests.
package cliclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nebari-dev/kemal/internal/cookiestore"
	"github.com/nebari-dev/kemal/internal/session"
)

const (
	// DefaultSignInPath is used when New is given an empty sign-in path.
	DefaultSignInPath = "/sign_in"
	// TokenHeader carries the token on authenticated requests.
	TokenHeader = "X-Token"
)

// defaultJar is the process cookie jar shared by clients that are not
// given one, next to session.Default.
var defaultJar = cookiestore.NewMemoryJar()

// Client is bound to one host and sign-in address.
type Client struct {
	host      string
	signInURL string

	transport  Transport
	httpClient *http.Client
	session    *session.Session
	cookies    *cookiestore.Adapter
	match      Matcher
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the transport used for login and Fetch.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPClient sets the *http.Client behind the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSession binds the client to s instead of session.Default.
func WithSession(s *session.Session) Option {
	return func(c *Client) { c.session = s }
}

// WithJar persists the token cookie in jar.
func WithJar(jar cookiestore.Jar) Option {
	return func(c *Client) { c.cookies = cookiestore.NewAdapter(jar) }
}

// WithMatcher sets the policy deciding which requests get the token.
func WithMatcher(m Matcher) Option {
	return func(c *Client) {
		if m != nil {
			c.match = m
		}
	}
}

// New creates a client for host. An empty host means same-origin ("/"),
// an empty signInPath means DefaultSignInPath.
func New(host, signInPath string, opts ...Option) *Client {
	host = NormalizeHost(host)
	c := &Client{
		host:      host,
		signInURL: host + strings.TrimLeft(normalizeSignInPath(signInPath), "/"),
		session:   session.Default,
		cookies:   cookiestore.NewAdapter(defaultJar),
		match:     MatchHostOrRelative,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		hc := c.httpClient
		if hc == nil {
			hc = &http.Client{Timeout: 30 * time.Second}
		}
		c.transport = NewHTTPTransport(c.host, hc)
	}
	return c
}

// NormalizeHost returns host the way a Client stores it, ending in "/".
func NormalizeHost(host string) string {
	if host == "" {
		host = "/"
	}
	return strings.TrimRight(host, "/") + "/"
}

func normalizeSignInPath(path string) string {
	if path == "" {
		return DefaultSignInPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Host returns the normalized host, always ending in "/".
func (c *Client) Host() string {
	return c.host
}

// SignInURL returns the resolved sign-in address.
func (c *Client) SignInURL() string {
	return c.signInURL
}

// Session returns the session the client reads and commits tokens to.
func (c *Client) Session() *session.Session {
	return c.session
}

// Token returns the token decorated requests carry: the session value,
// else the persisted cookie. "" means none.
func (c *Client) Token() string {
	if token := c.session.Token(); token != "" {
		return token
	}
	token, ok, err := c.cookies.ReadToken()
	if err != nil {
		c.session.Report(err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// Fetch sends a request through the transport, adding the token header
// when target belongs to the client host. opts.Headers is not modified.
func (c *Client) Fetch(ctx context.Context, target string, opts Options) (*Response, error) {
	opts.Headers = c.decorate(target, opts.Headers)
	return c.transport.Do(ctx, target, opts)
}

// NewRequest builds an *http.Request for target with the token header set
// under the same rules as Fetch. Same-origin paths are made absolute
// against the host.
func (c *Client) NewRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	resolved := target
	if t, ok := c.transport.(*HTTPTransport); ok {
		resolved = t.Resolve(target)
	}

	req, err := http.NewRequestWithContext(ctx, method, resolved, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.decorate(target, req.Header)
	return req, nil
}

func (c *Client) decorate(target string, headers http.Header) http.Header {
	if !c.match(c.host, target) {
		return headers
	}
	token := c.Token()
	if token == "" {
		return headers
	}

	out := headers.Clone()
	if out == nil {
		out = make(http.Header)
	}
	out.Set(TokenHeader, token)
	return out
}
