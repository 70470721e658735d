// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"yorick/internal/models"
)

var (
	// ErrEmptyUpdate is returned by Update when no field was provided.
	ErrEmptyUpdate = errors.New("store: no fields to update")

	// ErrUnknownCategory is returned by Update when category_id does not
	// reference an existing category.
	ErrUnknownCategory = errors.New("store: unknown category")
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for a failed FK check.
const foreignKeyViolation = "23503"

// PostStore handles all post-related database operations. Every read joins
// the category so the category name is denormalized into the result.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const (
	postColumns = `p.id, p.title, p.slug, p.content, p.status, p.category_id,
		p.created_at, p.published_at, c.name`
	summaryColumns = `p.id, p.title, p.slug, p.status, p.category_id,
		p.created_at, p.published_at, c.name`
	postJoin = `FROM posts p JOIN categories c ON c.id = p.category_id`
)

// scanPost scans a row selected with postColumns.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Status, &p.CategoryID,
		&p.CreatedAt, &p.PublishedAt, &p.Category,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListLatestPublished returns up to limit published posts, newest first.
func (s *PostStore) ListLatestPublished(ctx context.Context, limit int) ([]models.PostSummary, error) {
	return s.listSummaries(ctx, `
		SELECT `+summaryColumns+` `+postJoin+`
		WHERE p.status = 'published'
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
}

// ListPublishedByCategory returns the published posts of the named category,
// newest first. An unknown category yields an empty list.
func (s *PostStore) ListPublishedByCategory(ctx context.Context, name string) ([]models.PostSummary, error) {
	return s.listSummaries(ctx, `
		SELECT `+summaryColumns+` `+postJoin+`
		WHERE p.status = 'published' AND c.name = $1
		ORDER BY p.created_at DESC
	`, name)
}

// ListDrafts returns every draft post, newest first.
func (s *PostStore) ListDrafts(ctx context.Context) ([]models.Post, error) {
	return s.listPosts(ctx, `
		SELECT `+postColumns+` `+postJoin+`
		WHERE p.status = 'draft'
		ORDER BY p.created_at DESC
	`)
}

// ListAllPublished returns every published post with its content, newest
// first. Used by the RSS feed and the object storage export.
func (s *PostStore) ListAllPublished(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		return s.listPosts(ctx, `
			SELECT `+postColumns+` `+postJoin+`
			WHERE p.status = 'published'
			ORDER BY p.created_at DESC
		`)
	}
	return s.listPosts(ctx, `
		SELECT `+postColumns+` `+postJoin+`
		WHERE p.status = 'published'
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
}

// FindPublishedBySlug retrieves a published post by its slug. Returns nil if
// no published post has that slug.
func (s *PostStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` `+postJoin+`
		WHERE p.status = 'published' AND p.slug = $1
	`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published post by slug: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug regardless of status. Returns nil
// if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+` `+postJoin+`
		WHERE p.slug = $1
	`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// RefsInCategory returns the title and slug of every post in a category,
// whatever its status.
func (s *PostStore) RefsInCategory(ctx context.Context, categoryID int64) ([]models.PostRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, slug FROM posts WHERE category_id = $1 ORDER BY created_at`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list post refs: %w", err)
	}
	defer rows.Close()

	refs := []models.PostRef{}
	for rows.Next() {
		var r models.PostRef
		if err := rows.Scan(&r.Title, &r.Slug); err != nil {
			return nil, fmt.Errorf("scan post ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// CreateDraft inserts a new draft post and fills in its generated ID,
// status and creation time.
func (s *PostStore) CreateDraft(ctx context.Context, p *models.Post) error {
	p.Status = models.PostStatusDraft
	p.PublishedAt = nil
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (slug, title, content, category_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.Slug, p.Title, p.Content, p.CategoryID, p.Status).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create draft post: %w", err)
	}
	return nil
}

// Update applies the provided fields of u to the post with the given slug.
// Setting the status to published stamps published_at with now. Returns
// false if no row matched.
func (s *PostStore) Update(ctx context.Context, slug string, u models.PostUpdate, now time.Time) (bool, error) {
	query, args, err := buildUpdate(slug, u, now)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return false, ErrUnknownCategory
		}
		return false, fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update post rows affected: %w", err)
	}
	return n > 0, nil
}

// buildUpdate assembles the UPDATE statement for the provided fields.
// Only column names and placeholder numbers are formatted into the query;
// every value is bound as a parameter.
func buildUpdate(slug string, u models.PostUpdate, now time.Time) (string, []any, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Content != nil {
		add("content", *u.Content)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
		if *u.Status == models.PostStatusPublished {
			add("published_at", now)
		}
	}
	if u.CategoryID != nil {
		add("category_id", *u.CategoryID)
	}

	if len(sets) == 0 {
		return "", nil, ErrEmptyUpdate
	}

	args = append(args, slug)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE slug = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

// DeleteBySlug removes a post by slug. Returns false if no row matched.
func (s *PostStore) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *PostStore) listSummaries(ctx context.Context, query string, args ...any) ([]models.PostSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list post summaries: %w", err)
	}
	defer rows.Close()

	items := []models.PostSummary{}
	for rows.Next() {
		var p models.PostSummary
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Status, &p.CategoryID,
			&p.CreatedAt, &p.PublishedAt, &p.Category,
		); err != nil {
			return nil, fmt.Errorf("scan post summary: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (s *PostStore) listPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
