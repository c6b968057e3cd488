package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost", true},
		{"http://localhost:3000", true},
		{"http://192.168.1.1:7777", true},
		{"http://10.0.0.1", true},
		{"http://172.31.255.255:443", true},
		{"http://127.0.0.1:3000", true},
		{"http://169.254.1.1", true},
		{"http://[::1]:3000", true},
		{"http://[fe80::1]", true},
		{"http://mynas.local:7777", true},
		{"http://mediaserver:7777", true},

		{"http://example.com", false},
		{"https://image.tmdb.org.evil.com", false},
		{"http://8.8.8.8", false},
		{"http://172.32.0.1", false},
		{"http://[2001:db8::1]", false},
		{"", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

func preflight(t *testing.T, handler http.Handler, origin string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/api/watchlist", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get("Access-Control-Allow-Origin")
}

func TestNewCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"explicit match", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"explicit miss", []string{"https://app.example.com"}, "https://other.example.com", false},
		{"wildcard", []string{"*"}, "https://anything.example.com", true},
		{"private lan", []string{PrivateOrigins}, "http://192.168.1.20:8081", true},
		{"private rejects public", []string{PrivateOrigins}, "https://evil.com", false},
		{"private plus explicit", []string{PrivateOrigins, "https://app.example.com"}, "https://app.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preflight(t, NewCORS(tt.origins)(next), tt.origin)
			if (got != "") != tt.allowed {
				t.Fatalf("origin %q: Access-Control-Allow-Origin = %q, allowed want %v", tt.origin, got, tt.allowed)
			}
		})
	}
}
