package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okabe/codemart/app/api"
	"github.com/okabe/codemart/app/catalog"
	"github.com/okabe/codemart/app/cfg"
	"github.com/okabe/codemart/app/database"
	"github.com/okabe/codemart/app/marketplace"
	"github.com/okabe/codemart/app/secrets"
	"github.com/okabe/codemart/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Codemart server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName, appCfg.DBSSLMode)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	productRepo := database.NewProductRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	backupRepo := database.NewBackupRepository(db)

	configCache := catalog.NewConfigCache(appCfg.ProfilesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load sync profiles", "error", err)
		os.Exit(1)
	}
	slog.Info("Sync profiles loaded", "count", configCache.GetConfigCount())

	client := marketplace.NewClient(appCfg.MarketplaceURL, appCfg.UserAgent, nil)

	var secretsProvider secrets.Provider
	if appCfg.MarketplaceAPIKey != "" {
		secretsProvider = secrets.NewStaticProvider(appCfg.MarketplaceAPIKey)
		slog.Info("Using static marketplace API key")
	} else {
		secretsProvider = secrets.NewFunctionProvider(appCfg.SecretsURL, appCfg.SecretsToken, appCfg.UserAgent, nil)
		slog.Info("Using secret-function credential provider", "url", appCfg.SecretsURL)
	}

	reconciler := catalog.NewReconciler(client, productRepo)
	ingestor := catalog.NewIngestor(secretsProvider, client, reconciler, productRepo)

	scheduler := tasks.NewScheduler(configCache, ingestor, backupRepo)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	handler := api.NewHandler(configCache, productRepo, reviewRepo, ingestor, scheduler, client, secretsProvider)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
