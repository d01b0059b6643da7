package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/storeconnect"
	"github.com/fr0stylo/storeconnect/internal/adapters/sqlite"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/channel3"
	"github.com/fr0stylo/storeconnect/internal/config"
	"github.com/fr0stylo/storeconnect/internal/db"
	"github.com/fr0stylo/storeconnect/internal/observability"
	"github.com/fr0stylo/storeconnect/internal/server"
	"github.com/fr0stylo/storeconnect/internal/server/routes"
)

func Run() error {
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	base := slog.New(observability.WrapSlogHandler(baseHandler))
	slog.SetDefault(slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)))
	log := slog.Default()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.UsesLocalSessionSecret() {
		slog.Warn("STORECONNECT_SESSION_SECRET not set, using local development fallback")
	}

	otelShutdown, err := observability.SetupOpenTelemetry(context.Background(), log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(ctx); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()
	store := sqlite.NewStore(database)

	// Protocol events are only written while debug logging is switched on.
	debug := observability.NewDebugSwitch(cfg.Channel3.DebugLog)
	protocolLog := observability.NewDebugLogger(base, debug)

	client := channel3.NewClient(cfg.Channel3.BaseURL, cfg.Channel3.PixelBaseURL, cfg.Channel3.NotifyTimeout)
	tokens := appservices.NewActionTokens(cfg.Auth.SessionSecret, cfg.Auth.ActionTokenTTL)
	allowList := appservices.NewCallbackAllowList(cfg.Channel3.Debug, appservices.WithExtraHosts(cfg.Channel3.AllowedCallbackHosts...))

	users := appservices.NewUserService(store, cfg.Auth.ManagerEmails, log)
	credentials := appservices.NewCredentialService(store, protocolLog)
	connection := appservices.NewConnectionService(store)
	connect := appservices.NewConnectService(credentials, allowList, tokens, appservices.StoreIdentity{
		URL:      cfg.Store.URL,
		Name:     cfg.Store.Name,
		Currency: cfg.Store.Currency,
	}, protocolLog)
	disconnect := appservices.NewDisconnectService(credentials, tokens, client, cfg.Store.URL, protocolLog)
	settings := appservices.NewSettingsService(store, connection, credentials, debug, cfg.Channel3.BaseURL, log)
	tracking := appservices.NewTrackingService(connection, store, client, tokens, cfg.Channel3.PixelBaseURL, cfg.Store.Currency, protocolLog)

	if err := settings.LoadDebugSwitch(context.Background(), cfg.Channel3.DebugLog); err != nil {
		return fmt.Errorf("failed to load debug setting: %w", err)
	}

	routes.ConfigureAuth(routes.AuthConfig{
		SessionKey:         cfg.Auth.SessionSecret,
		GitHubClientID:     cfg.Auth.GitHubClientID,
		GitHubClientSecret: cfg.Auth.GitHubClientSecret,
		GitHubCallbackURL:  cfg.Auth.GitHubCallbackURL,
		SecureCookies:      cfg.Auth.SecureCookie,
	})

	publicFS, err := storeconnect.Public()
	if err != nil {
		return fmt.Errorf("failed to load public assets: %w", err)
	}

	srv := server.New(log, publicFS)
	connectRoutes := routes.NewConnectRoutes(connect, protocolLog)
	disconnectRoutes := routes.NewDisconnectRoutes(disconnect)
	srv.RegisterRouter(routes.NewAuthRoutes(users, cfg.IsLocalDevelopment()))
	srv.RegisterRouter(connectRoutes)
	srv.RegisterRouter(disconnectRoutes)
	srv.RegisterRouter(routes.NewLegacyRoutes(connectRoutes, disconnectRoutes))
	srv.RegisterRouter(routes.NewSettingsRoutes(settings, disconnect, log))
	srv.RegisterRouter(routes.NewAPIRoutes(store, connection, credentials, cfg.Store.URL, protocolLog))
	srv.RegisterRouter(routes.NewTrackingRoutes(tracking, cfg.Auth.SecureCookie))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "store_url", cfg.Store.URL, "allowed_callback_hosts", allowList.Hosts())
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
