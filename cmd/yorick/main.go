// Package main is the entry point of the yorick blog backend. It serves the
// HTTP API, runs the content pipelines on a schedule and exposes one-shot
// commands for migrations, pipeline runs and the object storage export.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"yorick/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "yorick",
	Short:         "Blog backend with scheduled AI-written drafts",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, generatePostCmd, discoverCategoriesCmd, resetRunCmd, exportCmd)
}

func main() {
	// A missing .env is fine; the environment may be set by the platform.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "command", commandName(), "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: text in development, JSON
// otherwise.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler).With("app", cfg.Name))
}

func commandName() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "serve"
}
