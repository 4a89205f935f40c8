// Package config assembles process-level configuration from the environment
// so main stays lean.
package config

import (
	"net/netip"
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string

	// JWT
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration

	// AdminKeyHash is the bcrypt hash of the internal API key.
	AdminKeyHash string

	// TrustedProxies lists CIDR prefixes whose forwarding headers are honored.
	TrustedProxies []netip.Prefix

	RequestTimeout time.Duration

	DatabaseURL string
	Redis       RedisConfig
}

// RedisConfig holds Redis connection configuration. A zero URL means the
// rule cache runs without Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:           envOr("COINGUARD_ADDR", ":8080"),
		Environment:    envOr("COINGUARD_ENV", "dev"),
		JWTSigningKey:  envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:      envOr("JWT_ISSUER", "coinguard"),
		JWTAudience:    envOr("JWT_AUDIENCE", "coinguard-api"),
		TokenTTL:       durationOr("TOKEN_TTL", 15*time.Minute),
		AdminKeyHash:   os.Getenv("ADMIN_KEY_HASH"),
		RequestTimeout: durationOr("REQUEST_TIMEOUT", 10*time.Second),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if raw := os.Getenv("TRUSTED_PROXIES"); raw != "" {
		for _, cidr := range strings.Split(raw, ",") {
			prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
			if err != nil {
				continue
			}
			cfg.TrustedProxies = append(cfg.TrustedProxies, prefix)
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
