// Package main provides a CLI tool for generating test tokens for the
// coinguard API. These tokens use the dev signing key and will NOT work
// against a production deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"coinguard/internal/token"
	id "coinguard/pkg/domain"
)

const (
	// Dev signing key, matches config.FromEnv when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "coinguard"
	defaultAudience = "coinguard-api"
	defaultTTL      = 15 * time.Minute
)

type tokenOutput struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	userIDFlag := flag.String("user-id", "", "User ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", defaultTTL, "Token time-to-live")
	signingKey := flag.String("key", devSigningKey, "JWT signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	userID := id.NewUserID()
	if *userIDFlag != "" {
		parsed, err := id.ParseUserID(*userIDFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid user-id %q: %v\n", *userIDFlag, err)
			os.Exit(1)
		}
		userID = parsed
	}

	svc := token.NewJWTService(*signingKey, defaultIssuer, defaultAudience, *ttl)
	accessToken, err := svc.GenerateAccessToken(context.Background(), userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     accessToken,
			UserID:    userID.String(),
			ExpiresIn: ttl.String(),
			Usage:     `curl -H "Authorization: Bearer <token>" -H "Content-Type: application/json" -d '{"action":"daily_login"}' http://localhost:8080/api/v1/rewards/validate`,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("user_id: %s\n", userID)
	fmt.Printf("token:   %s\n", accessToken)
	fmt.Printf("expires: %s\n", ttl)
}
