// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// an in-memory store implementing every handler interface, and a
// PostgreSQL helper for integration tests that skip when the DB is
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"yorick/internal/database"
	"yorick/internal/models"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory stand-in for the post and category stores.
type memStore struct {
	mu      sync.Mutex
	posts   []models.Post
	cats    []models.Category
	err     error
	updates int
}

func newMemStore() *memStore {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := t0.Add(time.Hour)
	return &memStore{
		cats: []models.Category{
			{ID: 1, Name: "Computing", CreatedAt: t0},
			{ID: 2, Name: "Art", CreatedAt: t0},
			{ID: 3, Name: "Medicine", CreatedAt: t0},
		},
		posts: []models.Post{
			{ID: 1, Title: "The Abacus", Slug: "the-abacus", Content: "# Beads\n\nThanks!", Status: models.PostStatusPublished, CategoryID: 1, Category: "Computing", CreatedAt: t0, PublishedAt: &pub},
			{ID: 2, Title: "Looms", Slug: "looms", Content: "Punch cards.", Status: models.PostStatusPublished, CategoryID: 1, Category: "Computing", CreatedAt: t0.Add(time.Minute), PublishedAt: &pub},
			{ID: 3, Title: "Cave Paintings", Slug: "cave-paintings", Content: "Ochre.", Status: models.PostStatusDraft, CategoryID: 2, Category: "Art", CreatedAt: t0.Add(2 * time.Minute)},
			{ID: 4, Title: "Old News", Slug: "old-news", Content: "Gone.", Status: models.PostStatusArchived, CategoryID: 3, Category: "Medicine", CreatedAt: t0.Add(3 * time.Minute)},
		},
	}
}

func summary(p models.Post) models.PostSummary {
	return models.PostSummary{
		ID: p.ID, Title: p.Title, Slug: p.Slug, Status: p.Status, CategoryID: p.CategoryID,
		CreatedAt: p.CreatedAt, PublishedAt: p.PublishedAt, Category: p.Category,
	}
}

// filter returns copies of posts matching keep, newest first.
func (m *memStore) filter(keep func(models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range m.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListLatestPublished(_ context.Context, limit int) ([]models.PostSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.PostSummary{}
	for _, p := range m.filter(func(p models.Post) bool { return p.IsPublished() }) {
		if len(out) == limit {
			break
		}
		out = append(out, summary(p))
	}
	return out, nil
}

func (m *memStore) FindPublishedBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.posts {
		if p.Slug == slug && p.IsPublished() {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListPublishedByCategory(_ context.Context, name string) ([]models.PostSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.PostSummary{}
	for _, p := range m.filter(func(p models.Post) bool { return p.IsPublished() && p.Category == name }) {
		out = append(out, summary(p))
	}
	return out, nil
}

func (m *memStore) ListAllPublished(_ context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := m.filter(func(p models.Post) bool { return p.IsPublished() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListWithPublishedCounts(context.Context) ([]models.CategoryWithCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.CategoryWithCount{}
	for _, c := range m.cats {
		n := 0
		for _, p := range m.posts {
			if p.CategoryID == c.ID && p.IsPublished() {
				n++
			}
		}
		if n > 0 {
			out = append(out, models.CategoryWithCount{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, PostCount: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]models.Category{}, m.cats...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListDrafts(context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(p models.Post) bool { return p.Status == models.PostStatusDraft }), nil
}

func (m *memStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) Update(_ context.Context, slug string, u models.PostUpdate, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.updates++
	for i := range m.posts {
		p := &m.posts[i]
		if p.Slug != slug {
			continue
		}
		if u.Title != nil {
			p.Title = *u.Title
		}
		if u.Content != nil {
			p.Content = *u.Content
		}
		if u.Status != nil {
			p.Status = *u.Status
			if *u.Status == models.PostStatusPublished {
				p.PublishedAt = &now
			}
		}
		if u.CategoryID != nil {
			p.CategoryID = *u.CategoryID
		}
		return true, nil
	}
	return false, nil
}

func (m *memStore) DeleteBySlug(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for i, p := range m.posts {
		if p.Slug == slug {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "yorick")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "yorick")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
