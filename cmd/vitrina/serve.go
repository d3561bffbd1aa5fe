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

	"github.com/spf13/cobra"

	"github.com/erazemk/vitrina/internal/api"
	"github.com/erazemk/vitrina/internal/db"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, publicURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API and uploaded images over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("public-url") {
				a.cfg.PublicURL = publicURL
			}
			return serve(a)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: :8080)")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "base URL of uploaded images (default: http://localhost:8080)")
	return cmd
}

func serve(a *app) error {
	cfg := a.cfg

	unlock, err := db.Lock(cfg.DB)
	if err != nil {
		return err
	}
	defer unlock()

	database, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	slog.Info("database ready", "path", cfg.DB)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(database, cfg.PublicURL),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	done := make(chan struct{})
	defer close(done)
	go watchSignals(server, quit, done)

	slog.Info("server started", "addr", cfg.Addr, "public_url", cfg.PublicURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// watchSignals shuts server down on the first signal from quit. It returns
// after the shutdown, or as soon as done is closed.
func watchSignals(server *http.Server, quit <-chan os.Signal, done <-chan struct{}) {
	var sig os.Signal
	select {
	case sig = <-quit:
	case <-done:
		return
	}
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}
