package common

import (
	"net"
	"net/http"
	"strings"

	"github.com/orsayn/site-api/internal/contact/application"
)

// ClientID derives the identifier the submission gate keys on. With
// trustProxy it takes the first X-Forwarded-For entry, then X-Real-IP;
// without it only the connection address is used. Nothing usable yields
// application.UnknownClient.
func ClientID(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
		return application.UnknownClient
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return application.UnknownClient
	}
	return addr
}
