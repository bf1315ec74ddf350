package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// devtoken mints an HS256 JWT for exercising the API against the insecure
// verifier (OIDC_ALLOW_INSECURE=true). The signature is not checked in that
// mode; signing keeps the token shape realistic.
func main() {
	sub := flag.String("sub", "dev-user-1", "subject identifier")
	email := flag.String("email", "dev@example.com", "email claim")
	first := flag.String("first", "Dev", "given_name claim")
	last := flag.String("last", "User", "family_name claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("DEVTOKEN_SECRET")
	if secret == "" {
		secret = "devtoken-local-secret"
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         *sub,
		"email":       *email,
		"given_name":  *first,
		"family_name": *last,
		"iat":         now.Unix(),
		"exp":         now.Add(*ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(signed)
}
