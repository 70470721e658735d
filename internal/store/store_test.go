// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"yorick/internal/database"
	"yorick/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "yorick")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "yorick")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testCategory creates a uniquely named category and removes it, together
// with its posts, when the test finishes.
func testCategory(t *testing.T, db *sql.DB, prefix string) models.Category {
	t.Helper()

	c := models.Category{Name: prefix + "-" + uuid.NewString()[:8]}
	err := db.QueryRow(
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, c.Name,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("insert test category: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// testPost inserts a post with the given status into a category.
func testPost(t *testing.T, db *sql.DB, categoryID int64, status models.PostStatus) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	p := &models.Post{
		Title:      "Test Post " + uuid.NewString()[:8],
		Slug:       "test-post-" + uuid.NewString()[:8],
		Content:    "# Hello\n\nBody.",
		CategoryID: categoryID,
	}
	if err := s.CreateDraft(context.Background(), p); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if status != models.PostStatusDraft {
		if _, err := s.Update(context.Background(), p.Slug, models.PostUpdate{Status: &status}, p.CreatedAt); err != nil {
			t.Fatalf("Update status: %v", err)
		}
	}
	t.Cleanup(func() { cleanPosts(t, db, p.Slug) })
	return p
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

// cleanCategories removes test categories by name. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", name)
	}
}
