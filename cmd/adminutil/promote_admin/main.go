package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/db"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

// promote_admin sets a user's role to 'admin' by email.
// Usage:
//
//	go run cmd/adminutil/promote_admin/main.go -email user@example.com
func main() {
	email := flag.String("email", "", "Email of the user to promote to admin")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/promote_admin/main.go -email user@example.com")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	pool := db.Init(cfg.Database)
	defer pool.Close()

	ct, err := pool.Exec(context.Background(),
		`UPDATE users SET role = 'admin' WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to promote user to admin: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no user found with email: %s", *email)
	}

	fmt.Printf("User %s promoted to admin.\n", *email)
}
