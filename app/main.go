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

	"feedrelay/app/api"
	"feedrelay/app/cfg"
	"feedrelay/app/config"
	"feedrelay/app/feed"
	"feedrelay/app/history"
	"feedrelay/app/scheduler"
	"feedrelay/app/webhook"
)

var slogLevel = new(slog.LevelVar)

func init() {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
}

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Cannot load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}
	if appCfg.Debug {
		slogLevel.Set(slog.LevelDebug)
	}

	slog.Info("Starting feedrelay", "version", appCfg.Version)

	store, err := history.Open(appCfg.HistoryBackend, appCfg.HistoryPath)
	if err != nil {
		slog.Error("Cannot open delivery history", "backend", appCfg.HistoryBackend, "path", appCfg.HistoryPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	specs, err := config.Load(appCfg.FeedsFile)
	if err != nil {
		slog.Error("Cannot load feed definitions", "file", appCfg.FeedsFile, "error", err)
		os.Exit(1)
	}

	defs, err := config.BuildDefinitions(specs, store)
	if err != nil {
		slog.Error("Invalid feed definition", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, time.Duration(appCfg.FetchTimeoutSeconds)*time.Second)
	sender := webhook.NewSender(httpClient, appCfg.UserAgent, time.Duration(appCfg.DispatchTimeoutSeconds)*time.Second)
	processor := feed.NewProcessor(fetcher, sender)

	feedScheduler := scheduler.NewScheduler(processor, defs)
	if err := feedScheduler.Start(); err != nil {
		slog.Error("Cannot start scheduler", "error", err)
		os.Exit(1)
	}
	defer feedScheduler.Stop()

	handler := api.NewHandler(feedScheduler, store)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	slog.Info("Scheduled feeds",
		"groups", feedScheduler.GroupCount(),
		"feeds", feedScheduler.FeedCount(),
		"port", appCfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler and store are stopped via defer
	slog.Info("Shutdown complete")
}
