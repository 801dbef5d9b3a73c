package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"borderland-arena/internal/config"
	"borderland-arena/internal/container"
	"borderland-arena/internal/handler"
	"borderland-arena/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var fileOpts *logger.FileOptions
	if cfg.LogFile != "" {
		fileOpts = &logger.FileOptions{Path: cfg.LogFile}
	}
	log, err := logger.NewWithFile(cfg.LogLevel, fileOpts)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting Borderland Arena server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	c, err := container.New(startCtx, cfg, log)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// No WriteTimeout: event streams stay open for the whole game.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Shutdown waits for open requests; event streams are ended explicitly.
	server.RegisterOnShutdown(c.Hub.Close)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := c.Hub.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("event relay: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shutdown HTTP server")
			return err
		}
		log.Info("HTTP server shutdown complete")
		return nil
	})

	err = g.Wait()
	c.Close()
	if err != nil {
		log.WithError(err).Error("Shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Application shutdown complete")
}
