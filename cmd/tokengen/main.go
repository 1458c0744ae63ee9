// Package main provides a CLI tool for generating test credentials for the
// kycgate API. These tokens use the dev signing key and will NOT work against
// a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "kycgate/internal/jwt_token"
)

const (
	// Dev signing key, matches config.go when JWT_SIGNING_KEY is not set.
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 30 * time.Minute
)

type tokenOutput struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	userIDFlag := flag.String("user-id", "", "User ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "HMAC signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	userID := uuid.New()
	if *userIDFlag != "" {
		parsed, err := uuid.Parse(*userIDFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid user-id: %v\n", err)
			os.Exit(1)
		}
		userID = parsed
	}

	service := jwttoken.NewJWTService(*signingKey, "kycgate", "kycgate", *ttl)
	token, err := service.GenerateAccessToken(userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     token,
			Type:      "bearer",
			UserID:    userID.String(),
			ExpiresIn: ttl.String(),
			Usage:     fmt.Sprintf("curl -H 'Authorization: Bearer %s' http://localhost:8003/users/%s", token, userID),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(token)
}
