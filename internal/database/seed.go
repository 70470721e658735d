// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// StarterCategories is the category list inserted into an empty development
// database so the content pipeline has something to pick from.
var StarterCategories = []string{
	"Computing Pioneers",
	"Robotics",
	"Space Exploration",
	"Medicine",
	"Mathematics",
	"Open Source",
}

// Seed populates the database with initial development data.
// It inserts the starter categories only when the categories table is empty.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, name := range StarterCategories {
		if _, err := tx.Exec(`INSERT INTO categories (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with starter categories", "count", len(StarterCategories))
	return nil
}
