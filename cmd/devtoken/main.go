package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/tjfontaine/story-gateway/internal/config"
	"github.com/tjfontaine/story-gateway/internal/server"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	subject := flag.String("sub", "", "user id placed in the token subject (empty mints an anon key)")
	role := flag.String("role", "authenticated", "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Println("Usage: go run cmd/devtoken/main.go -sub <user-id> [-role authenticated] [-ttl 24h]")
		fmt.Println("Mints a bearer token for local testing. Set auth.jwt_secret or SUPABASE_JWT_SECRET first.")
		os.Exit(1)
	}

	claimRole := *role
	if *subject == "" {
		claimRole = "anon"
	}

	now := time.Now()
	token, err := server.SignToken([]byte(cfg.Auth.JWTSecret), &server.Claims{
		Role: claimRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subject: %q\n", *subject)
	fmt.Printf("Role:    %s\n", claimRole)
	fmt.Printf("Expires: %s\n", now.Add(*ttl).Format(time.RFC3339))
	fmt.Println("\nSend it with every request:")
	fmt.Printf("  Authorization: Bearer %s\n", token)
}
