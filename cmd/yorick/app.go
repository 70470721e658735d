package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"yorick/internal/ai"
	"yorick/internal/cache"
	"yorick/internal/config"
	"yorick/internal/database"
	"yorick/internal/pipeline"
	"yorick/internal/store"
)

// runCheckpoints is the checkpoint surface the commands use. Both the
// Valkey store and the in-memory fallback satisfy it.
type runCheckpoints interface {
	pipeline.Checkpoints
	Clear(ctx context.Context, runID string) error
}

// app holds the connections shared by every command.
type app struct {
	cfg         *config.Config
	db          *sql.DB
	valkey      *redis.Client
	checkpoints runCheckpoints
	posts       *store.PostStore
	categories  *store.CategoryStore
}

// newApp loads configuration, sets up logging and opens the database.
// Valkey is optional; without it checkpoints live in memory and a failed
// run can only be resumed by the process that started it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(cfg)
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &app{
		cfg:        cfg,
		db:         db,
		posts:      store.NewPostStore(db),
		categories: store.NewCategoryStore(db),
	}

	if cfg.ValkeyEnabled() {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect valkey: %w", err)
		}
		a.valkey = client
		a.checkpoints = cache.NewCheckpointStore(client, cfg.CheckpointTTL)
	} else {
		slog.Warn("valkey not configured, pipeline checkpoints are kept in memory")
		a.checkpoints = cache.NewMemoryCheckpoints(cfg.CheckpointTTL)
	}

	return a, nil
}

// Close releases the connections.
func (a *app) Close() {
	if a.valkey != nil {
		a.valkey.Close()
	}
	a.db.Close()
}

// migrate applies pending migrations and seeds development data.
func (a *app) migrate(ctx context.Context) error {
	if err := database.Migrate(ctx, a.db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if a.cfg.IsDev() {
		if err := database.Seed(a.db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}
	return nil
}

// registry builds the AI provider registry from the configured providers.
func (a *app) registry() *ai.Registry {
	configs := make(map[string]ai.ProviderConfig, len(a.cfg.AIProviders))
	for name, p := range a.cfg.AIProviders {
		pc := ai.ProviderConfig{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL}
		if name == "workersai" {
			pc.AccountID = a.cfg.CloudflareAccountID
		}
		configs[name] = pc
	}

	reg := ai.NewRegistry(a.cfg.AIProvider, configs)
	slog.Info("ai providers initialized", "active", reg.ActiveName(), "available", reg.Available())
	if !reg.HasProvider(reg.ActiveName()) {
		slog.Warn("active ai provider has no api key, pipeline runs will fail", "provider", reg.ActiveName())
	}
	return reg
}

func (a *app) contentPipeline(gen pipeline.Generator) *pipeline.ContentPipeline {
	return pipeline.NewContentPipeline(gen, a.categories, a.posts, a.checkpoints)
}

func (a *app) categoryPipeline(gen pipeline.Generator) *pipeline.CategoryPipeline {
	return pipeline.NewCategoryPipeline(gen, a.categories, a.checkpoints)
}
