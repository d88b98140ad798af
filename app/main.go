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

	"github.com/openkeywords/keyword-comb/app/api"
	"github.com/openkeywords/keyword-comb/app/cfg"
	"github.com/openkeywords/keyword-comb/app/database"
	"github.com/openkeywords/keyword-comb/app/gap"
	"github.com/openkeywords/keyword-comb/app/providers"
	"github.com/openkeywords/keyword-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
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
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Keyword Comb server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := gap.NewConfigCache(appCfg.TargetsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load target configurations", "dir", appCfg.TargetsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Target configurations loaded", "dir", appCfg.TargetsDir, "count", configCache.GetConfigCount())

	targetRepo := database.NewTargetRepository(db)
	analysisRepo := database.NewAnalysisRepository(db)
	opportunityRepo := database.NewOpportunityRepository(db)

	httpClient := &http.Client{Timeout: 60 * time.Second}
	comparisonAPI := providers.NewSERankingClient(appCfg.SERankingAPIKey, httpClient, appCfg.UserAgent)
	metrics := providers.NewDataForSEOClient(appCfg.DataForSEOLogin, appCfg.DataForSEOPassword, httpClient, appCfg.UserAgent)

	if !comparisonAPI.IsConfigured() {
		slog.Warn("SE Ranking API key not set, gap analysis tasks will fail until configured")
	}
	if !metrics.IsConfigured() {
		slog.Info("DataForSEO credentials not set, metric and SERP enrichment disabled")
	}

	scheduler := tasks.NewScheduler(configCache, targetRepo, analysisRepo, opportunityRepo, comparisonAPI, metrics)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	apiHandler := api.NewHandler(configCache, targetRepo, analysisRepo, opportunityRepo, comparisonAPI, metrics, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, appCfg.BaseUrl)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
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
