package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"yorick/internal/handlers"
	"yorick/internal/middleware"
	"yorick/internal/pipeline"
	"yorick/internal/router"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the scheduled content pipeline",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.migrate(cmd.Context()); err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(a.cfg.RateLimitPerMinute, a.cfg.TrustProxyHeaders)
	defer limiter.Stop()

	r := router.New(
		handlers.NewAPI(a.cfg.Name, a.posts, a.categories),
		handlers.NewAdmin(a.posts, a.categories),
		handlers.NewFeed(a.cfg.Name, a.cfg.SiteURL, a.posts),
		limiter,
	)

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	trigger := pipeline.NewTrigger(a.contentPipeline(a.registry()).Run,
		a.cfg.PostScheduleInterval, a.cfg.PostScheduleAttempts)

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return trigger.Start(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
