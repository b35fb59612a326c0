package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orsayn/site-api/internal/journal/domain"
)

func TestResolveLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		cookie string
		accept string
		want   domain.Locale
	}{
		{"query locale", "/api/journal?locale=en", "fr", "fr", domain.LocaleEN},
		{"query lang", "/api/journal?lang=en-GB", "", "", domain.LocaleEN},
		{"unsupported query falls through", "/api/journal?locale=de", "en", "", domain.LocaleEN},
		{"cookie", "/api/journal", "en", "fr-FR", domain.LocaleEN},
		{"accept language", "/api/journal", "", "de-DE,en-US;q=0.8,fr;q=0.5", domain.LocaleEN},
		{"accept language french", "/api/journal", "", "fr-CA", domain.LocaleFR},
		{"unsupported accept", "/api/journal", "", "ja-JP", domain.DefaultLocale},
		{"nothing", "/api/journal", "", "", domain.DefaultLocale},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LocaleCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := ResolveLocale(r); got != tt.want {
				t.Fatalf("ResolveLocale = %q, want %q", got, tt.want)
			}
		})
	}
}
