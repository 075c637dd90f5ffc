package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sqliteadapter "github.com/lockfind/lockfind/internal/adapter/driven/sqlite"
	"github.com/lockfind/lockfind/internal/adapter/driven/vaultfs"
	httphandler "github.com/lockfind/lockfind/internal/adapter/driving/http"
	"github.com/lockfind/lockfind/internal/application"
	"github.com/lockfind/lockfind/internal/config"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"vault_dir", cfg.VaultDir,
		"rate_window", cfg.RateWindow,
		"rate_max", cfg.RateMax,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire the key store and load the persisted key set.
	keyStore := sqliteadapter.NewKeyRepo(db)
	keys := application.NewKeyManager(keyStore)

	records, err := keyStore.LoadAll(ctx)
	if err != nil {
		return err
	}
	keys.Load(records)
	slog.Info("api keys loaded", "count", len(records))

	// 6. Choose the request log backend.
	var logStore driven.RequestLogStore
	if cfg.PersistLogs {
		logStore = sqliteadapter.NewRequestLogRepo(db, 0)
		slog.Info("request logs persisted to database")
	} else {
		logStore = application.NewRingLog(0)
	}

	// 7. Wire the vault reader and search service.
	vault := vaultfs.New(cfg.VaultDir)
	search := application.NewSearchService(vault)

	// 8. Assemble the gateway.
	gw := application.NewGateway(application.GatewayConfig{
		RateWindow:      cfg.RateWindow,
		RateMax:         cfg.RateMax,
		LogRequests:     cfg.LogRequests,
		DefaultPassword: cfg.DefaultPassword,
		Version:         version,
	}, keys, application.NewRateLimiter(), search, logStore, slog.Default())

	// 9. Create the HTTP handler with middleware.
	apiHandler := httphandler.NewHandler(gw, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("lockfind started", "version", version, "listen_addr", cfg.ListenAddr)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	return nil
}
