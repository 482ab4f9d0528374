// Command apikey creates an API user. The plaintext key is printed once; only
// its bcrypt hash is stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
	"github.com/phrazzld/agency-api/internal/store"
)

func main() {
	username := flag.String("username", "", "name of the user to create")
	key := flag.String("key", "", "API key to assign; a random key is generated when empty")
	flag.Parse()

	if *username == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, cfg.Database, l)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := sqlstore.NewUserStore(db, cfg.Auth.BcryptCost, l)
	if err := createUser(ctx, users, *username, *key, os.Stdout); err != nil {
		_ = db.Close()
		log.Fatalf("failed to create user: %v", err)
	}
}

// createUser stores a user for username and writes the plaintext key to out.
func createUser(ctx context.Context, users store.UserStore, username, key string, out io.Writer) error {
	if key == "" {
		key = generateKey()
	}

	user, err := users.Create(ctx, username, key)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "User: %s (id %d)\nAPI key: %s\n", user.Username, user.ID, key)
	return err
}

// generateKey returns 32 random hex characters.
func generateKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
