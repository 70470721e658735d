// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the rows and projections exchanged between the
// store, the HTTP gateway and the content pipelines.
package models

import "time"

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post is a full post row with the category name denormalized in.
// The public single-post endpoint and every admin endpoint return this shape.
type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Status      PostStatus `json:"status"`
	CategoryID  int64      `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
	Category    string     `json:"category"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Path returns the public path of the post.
func (p *Post) Path() string {
	return "/posts/" + p.Slug
}

// PostSummary is a Post without its content, used by list endpoints.
type PostSummary struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Status      PostStatus `json:"status"`
	CategoryID  int64      `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
	Category    string     `json:"category"`
}

// PostRef is the title and slug of an existing post. The content pipeline
// feeds these into prompts to avoid duplicate topics and to cross-link.
type PostRef struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// PostUpdate carries a partial admin update. Nil fields are left untouched.
type PostUpdate struct {
	Title      *string     `json:"title"`
	Content    *string     `json:"content"`
	Status     *PostStatus `json:"status"`
	CategoryID *int64      `json:"category_id"`
}

// Empty reports whether the update has no recognized field set.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Status == nil && u.CategoryID == nil
}
