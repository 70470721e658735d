// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"yorick/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Names returns every category name in alphabetical order.
func (s *CategoryStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list category names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListWithPublishedCounts returns the categories that have at least one
// published post, with the number of published posts, ordered by name.
func (s *CategoryStore) ListWithPublishedCounts(ctx context.Context) ([]models.CategoryWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.created_at, COUNT(p.id) AS post_count
		FROM categories c
		INNER JOIN posts p ON p.category_id = c.id AND p.status = 'published'
		GROUP BY c.id, c.name, c.created_at
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories with counts: %w", err)
	}
	defer rows.Close()

	items := []models.CategoryWithCount{}
	for rows.Next() {
		var c models.CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.PostCount); err != nil {
			return nil, fmt.Errorf("scan category with count: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// LeastUsed returns the category with the fewest posts of any status. Ties
// go to the oldest category. Returns nil if there are no categories.
func (s *CategoryStore) LeastUsed(ctx context.Context) (*models.CategoryWithCount, error) {
	var c models.CategoryWithCount
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.created_at, COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id, c.name, c.created_at
		ORDER BY post_count, c.created_at, c.id
		LIMIT 1
	`).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.PostCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find least used category: %w", err)
	}
	return &c, nil
}

// CreateBatch inserts all names in a single transaction. Either every name
// is inserted or none is.
func (s *CategoryStore) CreateBatch(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (name) VALUES ($1)`)
	if err != nil {
		return fmt.Errorf("prepare category insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("insert category %q: %w", name, err)
		}
	}

	return tx.Commit()
}
