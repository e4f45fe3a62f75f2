// Command admintoken prints a signed bearer token for the admin routes.
//
//	ADMIN_JWT_SECRET=... go run ./cmd/admintoken -sub ops@example.com -ttl 12h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/testimonials/testimonials/internal/config"
	"github.com/testimonials/testimonials/internal/tokens"
	"github.com/testimonials/testimonials/pkg/logger"
)

func main() {
	sub := flag.String("sub", "admin", "subject recorded in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ADMIN_TOKEN_TTL)")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	// stdout carries only the token
	logger.SetOutput(os.Stderr)
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	tok, err := tokens.GenerateAdminToken(cfg, *sub, *ttl)
	if err != nil {
		logger.Fatalf("failed to sign token: %v", err)
	}
	exp, err := tokens.ExpiresAt(tok)
	if err != nil {
		logger.Fatalf("failed to read token expiry: %v", err)
	}
	logger.Infof("token for %q expires %s", *sub, exp.UTC().Format(time.RFC3339))
	fmt.Println(tok)
}
