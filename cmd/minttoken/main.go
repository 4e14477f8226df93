// Command minttoken prints a signed custom sign-in token for a user id. Put
// the output in auth.initial_auth_token (or INITIAL_AUTH_TOKEN) to have new
// sessions sign in as that user instead of anonymously.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hoanghai1803/driverpro/internal/config"
	"github.com/hoanghai1803/driverpro/internal/identity"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	uid := flag.String("uid", "", "user id to sign in as")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "Error: -uid is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Minting only needs the secret; nothing is persisted until sign-in.
	token, err := identity.NewService(nil, cfg.Auth.CustomTokenSecret).MintCustomToken(*uid, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error minting token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
