package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MichaelEbbert/ebaysales/internal/api"
	"github.com/MichaelEbbert/ebaysales/internal/assess"
	"github.com/MichaelEbbert/ebaysales/internal/auth"
	"github.com/MichaelEbbert/ebaysales/internal/config"
	"github.com/MichaelEbbert/ebaysales/internal/events"
	"github.com/MichaelEbbert/ebaysales/internal/store"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
	"github.com/MichaelEbbert/ebaysales/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and operator pages",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	password, err := auth.EnsureOperator(ctx, database)
	if err != nil {
		return fmt.Errorf("creating operator password: %w", err)
	}
	if password != "" {
		printInitResult(cmd, password)
	}

	// JWT secret is auto-generated on first run.
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	dir, err := uploads.Open(cfg.Server.UploadDir)
	if err != nil {
		return err
	}

	checker, err := newChecker(ctx, cfg.Assessor)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	apiRouter := api.NewRouter(api.Deps{
		DB:        database,
		JWTSecret: jwtSecret,
		Uploads:   dir,
		Checker:   checker,
		Events:    publisher,
	})

	webRouter, err := web.NewRouter(database, jwtSecret, nil)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "uploads", dir.Path(), "assessor", checker.Enabled())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

func newChecker(ctx context.Context, c config.AssessorConfig) (*assess.Checker, error) {
	a, err := assess.Select(ctx, c.Provider,
		assess.AnthropicConfig{APIKey: c.AnthropicAPIKey, Model: c.AnthropicModel},
		assess.GeminiConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel},
	)
	if err != nil {
		return nil, fmt.Errorf("configuring condition assessor: %w", err)
	}
	if a == nil {
		slog.Warn("no API key for condition assessor, checks disabled", "provider", c.Provider)
	}
	return assess.NewChecker(a), nil
}

// newPublisher connects to NATS when a URL is configured.
func newPublisher(url string) (events.Publisher, error) {
	if url == "" {
		return events.Noop{}, nil
	}
	n, err := events.ConnectNATS(url)
	if err != nil {
		return nil, err
	}
	slog.Info("publishing listing events", "nats", url)
	return n, nil
}

// printInitResult prints the generated operator password.
func printInitResult(cmd *cobra.Command, password string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Operator password created:")
	fmt.Fprintf(out, "  Password: %s\n", password)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Save this password, it cannot be recovered.")
	fmt.Fprintln(out, "It can be changed after logging in.")
	fmt.Fprintln(out)
}
