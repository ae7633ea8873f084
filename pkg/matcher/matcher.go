// Package matcher decides which intercepted requests are navigation requests
// for the application shell. The predicate is pure and synchronous: it never
// touches the network or any shared state.
//
// The application is a single-page app whose client-side router produces
// virtual paths. The shell document must be served for any such virtual path,
// while real static files must fall through to a different handler.
package matcher

import (
	"net"
	"net/http"
	"strings"
)

// Intent classifies what a request is asking for.
type Intent string

const (
	// IntentNavigate is a full-page navigation (address bar entry, link
	// click, back/forward), as reported by fetch metadata.
	IntentNavigate Intent = "navigate"

	// IntentOther is any sub-resource or programmatic fetch.
	IntentOther Intent = "other"
)

// NavigationRequest is the ephemeral per-request context the matcher
// operates on. One is built per intercepted request and never persisted.
type NavigationRequest struct {
	Intent Intent
	Host   string
	Path   string
}

// FromHTTP derives a NavigationRequest from an incoming HTTP request.
// Navigation intent is taken from the Sec-Fetch-Mode fetch-metadata header;
// for agents that do not send fetch metadata, a GET that accepts text/html
// is treated as a navigation.
func FromHTTP(r *http.Request) NavigationRequest {
	intent := IntentOther
	switch {
	case r.Header.Get("Sec-Fetch-Mode") == "navigate":
		intent = IntentNavigate
	case r.Header.Get("Sec-Fetch-Mode") == "":
		if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
			intent = IntentNavigate
		}
	}

	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return NavigationRequest{
		Intent: intent,
		Host:   host,
		Path:   r.URL.Path,
	}
}

// DefaultLocalDevHosts are the loopback aliases recognized as local
// development hosts when the config does not specify its own set.
var DefaultLocalDevHosts = []string{"localhost", "127.0.0.1", "::1"}

// Config holds the matcher configuration.
type Config struct {
	// CanonicalHost is the application's canonical hostname.
	CanonicalHost string

	// LocalDevHosts are additional hostnames accepted so the same shell
	// strategy operates in local development. Defaults to the loopback
	// aliases when empty.
	LocalDevHosts []string
}

// Matcher is the gate predicate for the shell document strategy.
type Matcher struct {
	canonicalHost string
	localHosts    map[string]bool
}

// New creates a matcher for the given configuration.
func New(cfg Config) *Matcher {
	hosts := cfg.LocalDevHosts
	if len(hosts) == 0 {
		hosts = DefaultLocalDevHosts
	}

	local := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		local[strings.ToLower(h)] = true
	}

	return &Matcher{
		canonicalHost: strings.ToLower(cfg.CanonicalHost),
		localHosts:    local,
	}
}

// Matches reports whether the shell strategy governs this request.
// True only if the request is a navigation, addressed to the canonical or a
// recognized local-development host, and the path does not look like a
// static asset request.
func (m *Matcher) Matches(nr NavigationRequest) bool {
	if nr.Intent != IntentNavigate {
		return false
	}

	host := strings.ToLower(nr.Host)
	if host != m.canonicalHost && !m.localHosts[host] {
		return false
	}

	return !looksLikeAsset(nr.Path)
}

// looksLikeAsset reports whether the path's trailing segment carries a file
// extension. Router fragments ("#/...") are stripped first, so hash-routed
// virtual paths qualify as shell navigations.
func looksLikeAsset(path string) bool {
	if i := strings.Index(path, "#"); i >= 0 {
		path = path[:i]
	}
	seg := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		seg = path[i+1:]
	}
	return strings.Contains(seg, ".")
}
