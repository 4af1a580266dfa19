package cliclient

import (
	"net/url"
	"strings"
)

// Matcher decides whether a request to target may carry the token issued
// by host. host is the normalized client host and always ends in "/".
type Matcher func(host, target string) bool

// MatchHostOrRelative accepts same-origin paths ("/x", not "//x") and
// absolute URLs with the client host's origin. Scheme and host compare
// case-insensitively and an explicit default port (":80" for http, ":443"
// for https) equals no port.
func MatchHostOrRelative(host, target string) bool {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return true
	}

	h, err := url.Parse(host)
	if err != nil || h.Host == "" {
		return false
	}
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	return sameOrigin(h, t)
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

func sameOrigin(a, b *url.URL) bool {
	if !strings.EqualFold(a.Scheme, b.Scheme) || !strings.EqualFold(a.Hostname(), b.Hostname()) {
		return false
	}
	return originPort(a) == originPort(b)
}

func originPort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	return defaultPorts[strings.ToLower(u.Scheme)]
}

// MatchExactHost accepts only the host URL itself, with or without the
// trailing slash.
func MatchExactHost(host, target string) bool {
	return target == host || target == strings.TrimSuffix(host, "/")
}

// MatchHostPrefix accepts any target under the host URL.
func MatchHostPrefix(host, target string) bool {
	return MatchExactHost(host, target) || strings.HasPrefix(target, host)
}

// MatcherByName maps a config value to a Matcher. Unknown names return nil.
func MatcherByName(name string) Matcher {
	switch name {
	case "", "host_or_relative":
		return MatchHostOrRelative
	case "exact":
		return MatchExactHost
	case "prefix":
		return MatchHostPrefix
	default:
		return nil
	}
}
