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

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-lookup/internal/config"
	httpapi "github.com/aanand-mishra/student-lookup/internal/http"
	"github.com/aanand-mishra/student-lookup/internal/store"
)

func newServeCmd(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup page and JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			a, err := newApp(cmd.Context(), cfg, os.Stdout)
			if err != nil {
				return err
			}
			defer a.close()

			return serve(a)
		},
	}
}

func serve(a *app) error {
	log := a.log

	var writer store.Writer
	if a.cfg.HTTPServer.AllowWrites {
		writer = a.backend
	}

	server := &http.Server{
		Addr:    a.cfg.HTTPServer.Addr,
		Handler: httpapi.NewRouter(a.ctrl, writer, log),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and the main
	// goroutine waits for a shutdown signal instead.
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", server.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err := <-serverErr:
		log.Error("server encountered an error", slog.String("error", err.Error()))
		return err
	}

	// In-flight requests get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
