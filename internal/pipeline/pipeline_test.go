// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"yorick/internal/ai"
	"yorick/internal/models"
)

// reply is one scripted model answer.
type reply struct {
	text string
	err  error
}

// scriptedGenerator answers calls from a fixed script, in order. Structured
// calls go through ai.DecodeJSON like the real registry.
type scriptedGenerator struct {
	mu       sync.Mutex
	script   []reply
	requests []ai.Request
}

func (g *scriptedGenerator) next(req ai.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	i := len(g.requests) - 1
	if i >= len(g.script) {
		return "", fmt.Errorf("unexpected model call %d", i+1)
	}
	return g.script[i].text, g.script[i].err
}

func (g *scriptedGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	return g.next(req)
}

func (g *scriptedGenerator) GenerateJSON(_ context.Context, req ai.Request, out any) error {
	text, err := g.next(req)
	if err != nil {
		return err
	}
	return ai.DecodeJSON(text, req.Schema, out)
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *scriptedGenerator) prompt(i int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var s string
	for _, m := range g.requests[i].Messages {
		s += m.Content
	}
	return s
}

// memBlog is an in-memory stand-in for the category and post stores.
type memBlog struct {
	mu         sync.Mutex
	categories []models.CategoryWithCount
	refs       map[int64][]models.PostRef
	drafts     []models.Post
	names      []string
	batches    [][]string
	failWrite  error
}

// LeastUsed mirrors the store ordering: post count, then creation time.
func (m *memBlog) LeastUsed(context.Context) (*models.CategoryWithCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *models.CategoryWithCount
	for i := range m.categories {
		c := &m.categories[i]
		if best == nil || c.PostCount < best.PostCount ||
			(c.PostCount == best.PostCount && c.CreatedAt.Before(best.CreatedAt)) {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *memBlog) RefsInCategory(_ context.Context, id int64) ([]models.PostRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := m.refs[id]
	if refs == nil {
		refs = []models.PostRef{}
	}
	return refs, nil
}

func (m *memBlog) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.drafts {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memBlog) CreateDraft(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	for _, d := range m.drafts {
		if d.Slug == p.Slug {
			return fmt.Errorf("duplicate slug %q", p.Slug)
		}
	}
	p.ID = int64(len(m.drafts) + 1)
	p.Status = models.PostStatusDraft
	m.drafts = append(m.drafts, *p)
	return nil
}

func (m *memBlog) Names(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.names...), nil
}

func (m *memBlog) CreateBatch(_ context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	m.batches = append(m.batches, names)
	m.names = append(m.names, names...)
	return nil
}

func twoCategories() *memBlog {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &memBlog{
		categories: []models.CategoryWithCount{
			{ID: 2, Name: "B", CreatedAt: t0, PostCount: 3},
			{ID: 1, Name: "A", CreatedAt: t0.Add(time.Hour), PostCount: 0},
		},
		refs: map[int64][]models.PostRef{},
	}
}

func happyScript() []reply {
	return []reply{
		{text: `{"topic":"The abacus"}`},
		{text: "```json\n{\"title\":\"Counting On You\",\"outline\":\"## Beads\",\"slug\":\"Counting On You!\"}\n```"},
		{text: "# Counting On You\n\nThank you, humans.\n"},
	}
}

// flakyCheckpoints fails the first Save of one step.
type flakyCheckpoints struct {
	Checkpoints
	step   string
	failed bool
}

func (f *flakyCheckpoints) Save(ctx context.Context, runID, step string, data []byte) error {
	if step == f.step && !f.failed {
		f.failed = true
		return fmt.Errorf("valkey: connection reset")
	}
	return f.Checkpoints.Save(ctx, runID, step, data)
}
