package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Options are the request parameters handed to a Transport.
type Options struct {
	Method  string
	Headers http.Header
	Body    []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Transport performs one request. An error means no response was received.
type Transport interface {
	Do(ctx context.Context, url string, opts Options) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, opts Options) (*Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, url string, opts Options) (*Response, error) {
	return f(ctx, url, opts)
}

// HTTPTransport sends requests with an *http.Client. Paths starting with
// "/" are resolved against base.
type HTTPTransport struct {
	base       *url.URL
	httpClient *http.Client
}

// NewHTTPTransport creates a transport for base. A nil client uses
// http.DefaultClient.
func NewHTTPTransport(base string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	t := &HTTPTransport{httpClient: httpClient}
	if u, err := url.Parse(base); err == nil && u.IsAbs() {
		t.base = u
	}
	return t
}

// Resolve returns target made absolute against the transport base.
func (t *HTTPTransport) Resolve(target string) string {
	if t.base == nil || !strings.HasPrefix(target, "/") {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return t.base.ResolveReference(ref).String()
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, target string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		bodyReader = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.Resolve(target), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
