package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/storeconnect/internal/adapters/sqlite"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/config"
	"github.com/fr0stylo/storeconnect/internal/db"
	"github.com/fr0stylo/storeconnect/internal/observability"
)

// Removes the installation: revokes the active credential and deletes every
// connection option. The remote service is not notified.
func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "database path without .sqlite suffix")
	flag.Parse()

	database, err := db.New(strings.TrimSpace(*dbPath))
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		_ = database.Close()
	}()

	logger := slog.New(observability.WrapSlogHandler(slog.NewTextHandler(os.Stderr, nil)))
	store := sqlite.NewStore(database)
	credentials := appservices.NewCredentialService(store, logger)
	tokens := appservices.NewActionTokens(cfg.Auth.SessionSecret, cfg.Auth.ActionTokenTTL)
	disconnect := appservices.NewDisconnectService(credentials, tokens, nil, cfg.Store.URL, logger)

	if err := disconnect.Uninstall(ctx); err != nil {
		log.Fatalf("uninstall: %v", err)
	}
	log.Printf("uninstall complete: db=%s", *dbPath)
}
