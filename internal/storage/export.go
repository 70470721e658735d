// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yorick/internal/models"
)

// ExportPrefix is the key prefix of exported posts.
const ExportPrefix = "posts/"

const markdownContentType = "text/markdown; charset=utf-8"

// PublishedSource lists the posts to export.
type PublishedSource interface {
	ListAllPublished(ctx context.Context, limit int) ([]models.Post, error)
}

// Bucket is the object storage surface the exporter needs.
type Bucket interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
	ObjectURL(key string) string
}

// frontMatter is the YAML header of an exported post.
type frontMatter struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Category    string    `yaml:"category"`
	CreatedAt   time.Time `yaml:"created_at"`
	PublishedAt time.Time `yaml:"published_at,omitempty"`
}

// ExportKey returns the object key of a post.
func ExportKey(slug string) string {
	return ExportPrefix + slug + ".md"
}

// RenderPost returns the post as Markdown with a YAML front matter block.
func RenderPost(p models.Post) ([]byte, error) {
	fm := frontMatter{
		Title:     p.Title,
		Slug:      p.Slug,
		Category:  p.Category,
		CreatedAt: p.CreatedAt.UTC(),
	}
	if p.PublishedAt != nil {
		fm.PublishedAt = p.PublishedAt.UTC()
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter for %s: %w", p.Slug, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(p.Content))
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Uploaded  int
	Unchanged int
	Pruned    int
}

// Export mirrors every published post under ExportPrefix and removes
// exported files whose post is no longer published. A post whose object
// already holds the rendered bytes is not uploaded again. Uploads stop at
// the first failure; nothing is pruned in that case.
func Export(ctx context.Context, posts PublishedSource, bucket Bucket) (ExportResult, error) {
	var res ExportResult

	published, err := posts.ListAllPublished(ctx, 0)
	if err != nil {
		return res, fmt.Errorf("list published posts: %w", err)
	}

	existing, err := bucket.List(ctx, ExportPrefix)
	if err != nil {
		return res, fmt.Errorf("list exported posts: %w", err)
	}
	stored := make(map[string]bool, len(existing))
	for _, key := range existing {
		stored[key] = true
	}

	keep := make(map[string]bool, len(published))
	for _, p := range published {
		body, err := RenderPost(p)
		if err != nil {
			return res, err
		}
		key := ExportKey(p.Slug)
		keep[key] = true

		if stored[key] && unchanged(ctx, bucket, key, body) {
			res.Unchanged++
			continue
		}
		if err := bucket.Upload(ctx, key, markdownContentType, bytes.NewReader(body), int64(len(body))); err != nil {
			return res, fmt.Errorf("export %s: %w", p.Slug, err)
		}
		slog.Debug("post exported", "slug", p.Slug, "url", bucket.ObjectURL(key))
		res.Uploaded++
	}

	var stale []string
	for _, key := range existing {
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	if err := bucket.Delete(ctx, stale...); err != nil {
		return res, fmt.Errorf("prune exported posts: %w", err)
	}
	res.Pruned = len(stale)

	slog.Info("posts exported", "uploaded", res.Uploaded, "unchanged", res.Unchanged, "pruned", res.Pruned)
	return res, nil
}

// unchanged reports whether key already holds body. A failed download
// counts as changed so the post is uploaded again.
func unchanged(ctx context.Context, bucket Bucket, key string, body []byte) bool {
	old, err := bucket.Download(ctx, key)
	if err != nil {
		slog.Warn("compare exported post failed", "key", key, "error", err)
		return false
	}
	return bytes.Equal(old, body)
}
