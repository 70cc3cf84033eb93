// gen-jwt mints a bearer token for manual API testing:
// JWT_SECRET=... go run ./scripts/gen-jwt [username]
package main

import (
	"fmt"
	"os"
	"time"

	"todo-api/internal/auth"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	subject := "seed-user"
	if len(os.Args) > 1 {
		subject = os.Args[1]
	}

	tokens := auth.NewTokenService(secret, 24*time.Hour)
	signed, err := tokens.Issue(subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Issue failed:", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
