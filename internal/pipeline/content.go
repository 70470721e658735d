// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yorick/internal/ai"
	"yorick/internal/models"
	"yorick/internal/slug"
)

// Step names of the content pipeline. They are checkpoint keys, so they
// must stay stable across releases.
const (
	StepSelectCategory = "select-category"
	StepGatherTitles   = "gather-titles"
	StepChooseTopic    = "choose-topic"
	StepPlan           = "plan"
	StepDraft          = "draft"
	StepSave           = "save"
)

// plan is the structured answer of the planning step.
type plan struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
	Slug    string `json:"slug"`
}

// ContentPipeline drafts one new blog post per run.
type ContentPipeline struct {
	gen         Generator
	categories  CategorySource
	posts       PostWriter
	checkpoints Checkpoints
}

// NewContentPipeline creates a content pipeline.
func NewContentPipeline(gen Generator, categories CategorySource, posts PostWriter, cp Checkpoints) *ContentPipeline {
	return &ContentPipeline{gen: gen, categories: categories, posts: posts, checkpoints: cp}
}

// Run executes the pipeline under runID and returns the public path of the
// new draft.
func (p *ContentPipeline) Run(ctx context.Context, runID string) (string, error) {
	cat, err := runStep(ctx, p.checkpoints, runID, StepSelectCategory, p.selectCategory)
	if err != nil {
		return "", err
	}

	existing, err := runStep(ctx, p.checkpoints, runID, StepGatherTitles, func(ctx context.Context) ([]models.PostRef, error) {
		return p.posts.RefsInCategory(ctx, cat.ID)
	})
	if err != nil {
		return "", err
	}

	topic, err := runStep(ctx, p.checkpoints, runID, StepChooseTopic, func(ctx context.Context) (string, error) {
		return p.chooseTopic(ctx, cat.Name, existing)
	})
	if err != nil {
		return "", err
	}

	pl, err := runStep(ctx, p.checkpoints, runID, StepPlan, func(ctx context.Context) (plan, error) {
		return p.plan(ctx, topic, existing)
	})
	if err != nil {
		return "", err
	}

	content, err := runStep(ctx, p.checkpoints, runID, StepDraft, func(ctx context.Context) (string, error) {
		return p.draft(ctx, pl, cat.Name, existing)
	})
	if err != nil {
		return "", err
	}

	post, err := runStep(ctx, p.checkpoints, runID, StepSave, func(ctx context.Context) (models.Post, error) {
		return p.save(ctx, models.Post{
			Title:      pl.Title,
			Slug:       pl.Slug,
			Content:    content,
			Status:     models.PostStatusDraft,
			CategoryID: cat.ID,
		})
	})
	if err != nil {
		return "", err
	}

	slog.Info("draft created", "run_id", runID, "slug", post.Slug, "category", cat.Name)
	return post.Path(), nil
}

func (p *ContentPipeline) selectCategory(ctx context.Context) (models.CategoryWithCount, error) {
	cat, err := p.categories.LeastUsed(ctx)
	if err != nil {
		return models.CategoryWithCount{}, err
	}
	if cat == nil {
		return models.CategoryWithCount{}, ErrNoCategories
	}
	return *cat, nil
}

func (p *ContentPipeline) chooseTopic(ctx context.Context, category string, existing []models.PostRef) (string, error) {
	var out struct {
		Topic string `json:"topic"`
	}
	err := p.gen.GenerateJSON(ctx, ai.Request{
		Messages:  []ai.Message{{Role: ai.RoleUser, Content: topicPrompt(category, existing)}},
		MaxTokens: contentMaxTokens,
		Schema:    topicSchema,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("choose topic: %w", err)
	}

	topic := strings.TrimSpace(out.Topic)
	if topic == "" {
		return "", fmt.Errorf("choose topic: %w: empty topic", ai.ErrSchemaMismatch)
	}
	return topic, nil
}

func (p *ContentPipeline) plan(ctx context.Context, topic string, existing []models.PostRef) (plan, error) {
	var out plan
	err := p.gen.GenerateJSON(ctx, ai.Request{
		Messages:  []ai.Message{{Role: ai.RoleUser, Content: planPrompt(topic, existing)}},
		MaxTokens: contentMaxTokens,
		Schema:    planSchema,
	}, &out)
	if err != nil {
		return plan{}, fmt.Errorf("plan post: %w", err)
	}

	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		return plan{}, fmt.Errorf("plan post: %w: empty title", ai.ErrSchemaMismatch)
	}

	// Models do not always honour the kebab-case instruction.
	s := slug.Generate(out.Slug)
	if s == "" {
		s = slug.Generate(out.Title)
	}
	if s == "" {
		return plan{}, errors.New("plan post: no usable slug")
	}
	out.Slug = s
	return out, nil
}

func (p *ContentPipeline) draft(ctx context.Context, pl plan, category string, existing []models.PostRef) (string, error) {
	text, err := p.gen.Generate(ctx, ai.Request{
		Messages:  []ai.Message{{Role: ai.RoleUser, Content: draftPrompt(pl, category, existing)}},
		MaxTokens: contentMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("draft post: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("draft post: empty content")
	}
	return text, nil
}

// save stores the draft. An identical draft under the same slug means an
// earlier attempt of this run inserted it but failed to record the step;
// that row is the result.
func (p *ContentPipeline) save(ctx context.Context, post models.Post) (models.Post, error) {
	prev, err := p.posts.FindBySlug(ctx, post.Slug)
	if err != nil {
		return post, fmt.Errorf("look up slug %s: %w", post.Slug, err)
	}
	if prev != nil && sameDraft(prev, &post) {
		slog.Info("draft already stored", "slug", post.Slug, "id", prev.ID)
		return *prev, nil
	}

	if err := p.posts.CreateDraft(ctx, &post); err != nil {
		return post, err
	}
	return post, nil
}

func sameDraft(a, b *models.Post) bool {
	return a.Status == models.PostStatusDraft &&
		a.Title == b.Title &&
		a.Content == b.Content &&
		a.CategoryID == b.CategoryID
}
