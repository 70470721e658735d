// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"yorick/internal/ai"
)

// Step names of the category discovery pipeline.
const (
	StepListCategories     = "list-categories"
	StepGenerateCategories = "generate-categories"
	StepInsertCategories   = "insert-categories"
)

// CategoryPipeline asks the model for categories the blog is missing and
// stores the ones that do not exist yet.
type CategoryPipeline struct {
	gen         Generator
	catalog     CategoryCatalog
	checkpoints Checkpoints
}

// NewCategoryPipeline creates a category discovery pipeline.
func NewCategoryPipeline(gen Generator, catalog CategoryCatalog, cp Checkpoints) *CategoryPipeline {
	return &CategoryPipeline{gen: gen, catalog: catalog, checkpoints: cp}
}

// Run executes the pipeline under runID and returns the names it added.
func (p *CategoryPipeline) Run(ctx context.Context, runID string) ([]string, error) {
	existing, err := runStep(ctx, p.checkpoints, runID, StepListCategories, p.catalog.Names)
	if err != nil {
		return nil, err
	}

	candidates, err := runStep(ctx, p.checkpoints, runID, StepGenerateCategories, func(ctx context.Context) ([]string, error) {
		return p.generate(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	added, err := runStep(ctx, p.checkpoints, runID, StepInsertCategories, func(ctx context.Context) ([]string, error) {
		names := newNames(candidates, existing)
		if len(names) == 0 {
			return names, nil
		}
		if err := p.catalog.CreateBatch(ctx, names); err != nil {
			return nil, err
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("categories discovered", "run_id", runID, "proposed", len(candidates), "added", len(added))
	return added, nil
}

func (p *CategoryPipeline) generate(ctx context.Context, existing []string) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	err := p.gen.GenerateJSON(ctx, ai.Request{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: categorySystemPrompt},
			{Role: ai.RoleUser, Content: categoryUserPrompt(existing)},
		},
		MaxTokens: categoryMaxTokens,
		Schema:    categoriesSchema,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("generate categories: %w", err)
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	return out.Categories, nil
}

// newNames returns the candidates that do not exactly match an existing
// name, in proposal order. Comparison is case sensitive and unnormalized.
// Repeated and empty candidates are dropped since the batch insert would
// reject them.
func newNames(candidates, existing []string) []string {
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, name := range existing {
		seen[name] = true
	}

	names := []string{}
	for _, name := range candidates {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
