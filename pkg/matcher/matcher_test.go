package matcher

import (
	"net/http/httptest"
	"testing"
)

func newTestMatcher() *Matcher {
	return New(Config{CanonicalHost: "app.example.com"})
}

func TestMatcher_Matches(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name string
		nr   NavigationRequest
		want bool
	}{
		{
			name: "navigation to canonical host root",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/"},
			want: true,
		},
		{
			name: "navigation to hash-routed virtual path",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/#/swap"},
			want: true,
		},
		{
			name: "navigation to router path without extension",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/settings/profile"},
			want: true,
		},
		{
			name: "static asset request excluded",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/asset.gif"},
			want: false,
		},
		{
			name: "nested static asset excluded",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/static/js/main.chunk.js"},
			want: false,
		},
		{
			name: "dot in non-trailing segment still matches",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/v1.2/dashboard"},
			want: true,
		},
		{
			name: "non-navigation intent excluded",
			nr:   NavigationRequest{Intent: IntentOther, Host: "app.example.com", Path: "/"},
			want: false,
		},
		{
			name: "foreign host excluded",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "evil.example.org", Path: "/"},
			want: false,
		},
		{
			name: "localhost allowed for development",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "localhost", Path: "/#/swap"},
			want: true,
		},
		{
			name: "loopback IP allowed for development",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "127.0.0.1", Path: "/pool"},
			want: true,
		},
		{
			name: "host comparison is case-insensitive",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "App.Example.Com", Path: "/"},
			want: true,
		},
		{
			name: "fragment-only suffix after extensionless path",
			nr:   NavigationRequest{Intent: IntentNavigate, Host: "app.example.com", Path: "/#/tokens/0x1234.eth"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Matches(tt.nr); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.nr, got, tt.want)
			}
		})
	}
}

func TestMatcher_CustomLocalDevHosts(t *testing.T) {
	m := New(Config{
		CanonicalHost: "app.example.com",
		LocalDevHosts: []string{"dev.local"},
	})

	if !m.Matches(NavigationRequest{Intent: IntentNavigate, Host: "dev.local", Path: "/"}) {
		t.Error("configured dev host should match")
	}
	// Default loopback aliases are replaced, not extended.
	if m.Matches(NavigationRequest{Intent: IntentNavigate, Host: "localhost", Path: "/"}) {
		t.Error("localhost should not match when a custom dev host set is configured")
	}
}

func TestFromHTTP(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		host       string
		headers    map[string]string
		wantIntent Intent
		wantHost   string
		wantPath   string
	}{
		{
			name:       "fetch metadata navigation",
			method:     "GET",
			target:     "/pool",
			host:       "app.example.com",
			headers:    map[string]string{"Sec-Fetch-Mode": "navigate"},
			wantIntent: IntentNavigate,
			wantHost:   "app.example.com",
			wantPath:   "/pool",
		},
		{
			name:       "fetch metadata sub-resource",
			method:     "GET",
			target:     "/api/quote",
			host:       "app.example.com",
			headers:    map[string]string{"Sec-Fetch-Mode": "cors"},
			wantIntent: IntentOther,
			wantHost:   "app.example.com",
			wantPath:   "/api/quote",
		},
		{
			name:       "accept header fallback without fetch metadata",
			method:     "GET",
			target:     "/",
			host:       "localhost:3000",
			headers:    map[string]string{"Accept": "text/html,application/xhtml+xml"},
			wantIntent: IntentNavigate,
			wantHost:   "localhost",
			wantPath:   "/",
		},
		{
			name:       "POST is never a navigation",
			method:     "POST",
			target:     "/",
			host:       "app.example.com",
			headers:    map[string]string{"Accept": "text/html"},
			wantIntent: IntentOther,
			wantHost:   "app.example.com",
			wantPath:   "/",
		},
		{
			name:       "port is stripped from host",
			method:     "GET",
			target:     "/",
			host:       "app.example.com:8443",
			headers:    map[string]string{"Sec-Fetch-Mode": "navigate"},
			wantIntent: IntentNavigate,
			wantHost:   "app.example.com",
			wantPath:   "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Host = tt.host
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			nr := FromHTTP(req)
			if nr.Intent != tt.wantIntent {
				t.Errorf("Intent = %v, want %v", nr.Intent, tt.wantIntent)
			}
			if nr.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", nr.Host, tt.wantHost)
			}
			if nr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", nr.Path, tt.wantPath)
			}
		})
	}
}

func TestLooksLikeAsset(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", false},
		{"", false},
		{"/swap", false},
		{"/asset.gif", true},
		{"/static/media/logo.svg", true},
		{"/#/swap", false},
		{"/v1.2/pool", false},
		{"/index.html", true},
	}

	for _, tt := range tests {
		if got := looksLikeAsset(tt.path); got != tt.want {
			t.Errorf("looksLikeAsset(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
