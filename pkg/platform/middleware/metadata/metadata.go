// Package metadata extracts client network metadata (IP address, User-Agent)
// into the request context. The suspicion heuristics and the security log both
// consume this metadata, so it is captured once here at the edge.
package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"coinguard/pkg/requestcontext"
)

// MaxForwardedHeaderLength caps the X-Forwarded-For and X-Real-IP headers to
// keep oversized injected values out of the security log.
const MaxForwardedHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists the IP prefixes allowed to set forwarding headers.
	// If empty, X-Forwarded-For and X-Real-IP are never trusted.
	TrustedProxies []netip.Prefix
}

// DefaultConfig returns a Config with no trusted proxies (secure by default).
func DefaultConfig() *Config {
	return &Config{}
}

// Middleware extracts client metadata with configurable trusted proxies.
type Middleware struct {
	config *Config
}

// NewMiddleware creates a new metadata middleware with the given config.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Middleware{config: cfg}
}

// Handler extracts the client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.extractClientIP(r)
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, userAgent)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractClientIP resolves the real client IP, honoring forwarding headers
// only when the direct peer is a trusted proxy.
func (m *Middleware) extractClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := r.Header.Get("X-Real-IP"); xri != "" && m.isTrustedProxy(remoteIP) {
			if len(xri) <= MaxForwardedHeaderLength {
				return strings.TrimSpace(xri)
			}
		}
		return remoteIP
	}

	// Anyone can send an XFF header; only believe it behind a trusted proxy.
	if !m.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	if len(xff) > MaxForwardedHeaderLength {
		return remoteIP
	}

	// First IP in the XFF chain is the original client.
	var clientIP string
	if before, _, ok := strings.Cut(xff, ","); ok {
		clientIP = strings.TrimSpace(before)
	} else {
		clientIP = strings.TrimSpace(xff)
	}

	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}

	return clientIP
}

// isTrustedProxy checks if the given IP is in the trusted proxy list.
func (m *Middleware) isTrustedProxy(ip string) bool {
	if len(m.config.TrustedProxies) == 0 {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseRemoteAddr extracts the IP from RemoteAddr (strips port).
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	// IPv6 with brackets: [::1]:port
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(strings.Split(remoteAddr, "]:")[0], "[]")
	}

	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}

	return remoteAddr
}
