package common

import (
	"net/http/httptest"
	"testing"

	"github.com/orsayn/site-api/internal/contact/application"
)

func TestClientID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		forwarded string
		realIP    string
		remote    string
		trust     bool
		want      string
	}{
		{"first forwarded entry", " 203.0.113.7 , 10.0.0.1", "198.51.100.2", "10.0.0.9:4321", true, "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.2", "10.0.0.9:4321", true, "198.51.100.2"},
		{"empty forwarded entry", " ,10.0.0.1", "198.51.100.2", "10.0.0.9:4321", true, "198.51.100.2"},
		{"no headers", "", "", "10.0.0.9:4321", true, application.UnknownClient},
		{"untrusted ignores headers", "203.0.113.7", "198.51.100.2", "10.0.0.9:4321", false, "10.0.0.9"},
		{"untrusted ipv6", "", "", "[2001:db8::1]:443", false, "2001:db8::1"},
		{"untrusted empty remote", "", "", "", false, application.UnknownClient},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("POST", "/api/contact", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientID(r, tt.trust); got != tt.want {
				t.Fatalf("ClientID = %q, want %q", got, tt.want)
			}
		})
	}
}
