// Command devtoken mints identity tokens for local testing against the storefront.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/service"
)

func main() {
	var (
		secret = flag.String("secret", os.Getenv("IDENTITY_JWT_SECRET"), "signing secret (defaults to IDENTITY_JWT_SECRET)")
		sub    = flag.String("sub", "dev-user", "subject (user id)")
		email  = flag.String("email", "dev@example.com", "email claim")
		name   = flag.String("name", "Dev User", "display name claim")
		role   = flag.String("role", "", "role claim, e.g. admin")
		ttl    = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "devtoken: -secret or IDENTITY_JWT_SECRET is required")
		os.Exit(2)
	}

	token, err := service.NewIdentityService(*secret).IssueToken(domain.IdentityClaims{
		Sub:   *sub,
		Email: *email,
		Name:  *name,
		Role:  *role,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
