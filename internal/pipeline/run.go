// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pipeline implements the generation runs that write new blog
// content: the content pipeline that drafts one post, the category
// discovery pipeline that grows the category list, and the periodic
// trigger that starts content runs.
//
// A run is a fixed, linear list of named steps. Each finished step stores
// its result as JSON under (run id, step name), so starting a run again
// with the same id replays finished steps and continues at the first one
// that has not completed. The first failing step aborts the run.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"yorick/internal/ai"
	"yorick/internal/models"
)

// ErrNoCategories is returned by the content pipeline when there is no
// category to write about.
var ErrNoCategories = errors.New("pipeline: no categories available")

// Checkpoints persists step results between attempts of the same run.
type Checkpoints interface {
	Load(ctx context.Context, runID, step string) ([]byte, bool, error)
	Save(ctx context.Context, runID, step string, data []byte) error
}

// Generator is the generative text capability the pipelines depend on.
// *ai.Registry satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
	GenerateJSON(ctx context.Context, req ai.Request, out any) error
}

// CategorySource picks the category the next post is written for.
type CategorySource interface {
	LeastUsed(ctx context.Context) (*models.CategoryWithCount, error)
}

// PostWriter reads sibling posts and stores new drafts.
type PostWriter interface {
	RefsInCategory(ctx context.Context, categoryID int64) ([]models.PostRef, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreateDraft(ctx context.Context, p *models.Post) error
}

// CategoryCatalog lists and extends the set of categories.
type CategoryCatalog interface {
	Names(ctx context.Context) ([]string, error)
	CreateBatch(ctx context.Context, names []string) error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// runStep executes fn once per run. A recorded result for (runID, name) is
// decoded and returned without calling fn; otherwise fn's result is
// recorded before it is returned.
func runStep[T any](ctx context.Context, cp Checkpoints, runID, name string, fn func(context.Context) (T, error)) (T, error) {
	var out T

	data, ok, err := cp.Load(ctx, runID, name)
	if err != nil {
		return out, fmt.Errorf("step %s: %w", name, err)
	}
	if ok {
		if err := json.Unmarshal(data, &out); err != nil {
			return out, fmt.Errorf("step %s: decode checkpoint: %w", name, err)
		}
		slog.Info("pipeline step replayed", "run_id", runID, "step", name)
		return out, nil
	}

	start := time.Now()
	slog.Info("pipeline step started", "run_id", runID, "step", name)

	out, err = fn(ctx)
	if err != nil {
		slog.Error("pipeline step failed", "run_id", runID, "step", name, "error", err, "duration", time.Since(start))
		return out, fmt.Errorf("step %s: %w", name, err)
	}

	data, err = json.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("step %s: encode checkpoint: %w", name, err)
	}
	if err := cp.Save(ctx, runID, name, data); err != nil {
		return out, fmt.Errorf("step %s: %w", name, err)
	}

	slog.Info("pipeline step finished", "run_id", runID, "step", name, "duration", time.Since(start))
	return out, nil
}
