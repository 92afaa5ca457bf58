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

	"github.com/wrale/decap-oauth-proxy/internal/logging"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
)

// Version is set by the build process
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "decap-oauth-proxy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and environment
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	provider := oauth.NewGitHubProvider(cfg.providerConfig())
	if !provider.Configured() {
		logger.Warn("GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET is not set; authorization requests will fail")
	}

	// Create and configure server
	srv, err := newServer(cfg, provider, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Create HTTP server with proper timeout configurations
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server listening",
			"port", cfg.Port,
			"version", Version,
			"git_hostname", cfg.GitHostname,
			"token_url", provider.Endpoint().TokenURL,
		)
		serverErrors <- httpServer.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("starting server: %w", err)

	case sig := <-shutdown:
		logger.Info("starting shutdown", "signal", sig.String())

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Shutdown server
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			if err := httpServer.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	logger.Info("server stopped")
	return nil
}
