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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/tripdex/internal/transport/chi"
	"github.com/kailas-cloud/tripdex/internal/version"
)

func newServeCmd(env *string) *cobra.Command {
	var eager bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *env, eager)
		},
	}
	cmd.Flags().BoolVar(&eager, "eager", false, "load or build the catalog before accepting requests")
	return cmd
}

func runServe(ctx context.Context, env string, eager bool) error {
	a, err := newApp(ctx, env)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	logger.Info("Starting tripdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("source_dir", a.cfg.Data.SourceDir),
		zap.String("index_dir", a.cfg.Data.IndexDir),
	)

	if eager {
		if err := a.planner.Ensure(ctx); err != nil {
			return fmt.Errorf("initialize catalog: %w", err)
		}
	}

	server := chiTransport.NewServer(a.planner, a.health, chiTransport.Options{
		APIKeys:     a.cfg.Auth.APIKeys,
		DefaultTopK: a.cfg.Search.DefaultTopK,
		MaxTopK:     a.cfg.Search.MaxTopK,
	}, logger)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
