// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the blog API. Handlers are
// grouped by concern (public API, admin, feed) and receive their
// dependencies through the handler struct.
package handlers

import (
	"context"
	"net/http"

	"yorick/internal/models"
)

// latestLimit is the number of posts the latest-posts endpoint returns.
const latestLimit = 20

// PostReader is the read side of the post store used by public handlers.
type PostReader interface {
	ListLatestPublished(ctx context.Context, limit int) ([]models.PostSummary, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPublishedByCategory(ctx context.Context, name string) ([]models.PostSummary, error)
}

// CategoryReader lists categories that have published posts.
type CategoryReader interface {
	ListWithPublishedCounts(ctx context.Context) ([]models.CategoryWithCount, error)
}

// API groups the public read-only JSON endpoints.
type API struct {
	name       string
	posts      PostReader
	categories CategoryReader
}

// NewAPI creates the public API handler group. name is reported by the
// liveness endpoint.
func NewAPI(name string, posts PostReader, categories CategoryReader) *API {
	return &API{name: name, posts: posts, categories: categories}
}

// Root is the liveness endpoint.
func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": a.name})
}

// LatestPosts returns the newest published posts.
func (a *API) LatestPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListLatestPublished(r.Context(), latestLimit)
	if err != nil {
		serverError(w, r, "list latest posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Post returns one published post by slug.
func (a *API) Post(w http.ResponseWriter, r *http.Request) {
	slug, err := pathParam(r, "slug")
	if err != nil {
		badPathParam(w)
		return
	}

	post, err := a.posts.FindPublishedBySlug(r.Context(), slug)
	if err != nil {
		serverError(w, r, "find post failed", err)
		return
	}
	if post == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Categories returns the categories with at least one published post.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.ListWithPublishedCounts(r.Context())
	if err != nil {
		serverError(w, r, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CategoryPosts returns the published posts of one category. An unknown
// category yields an empty list.
func (a *API) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		badPathParam(w)
		return
	}

	posts, err := a.posts.ListPublishedByCategory(r.Context(), name)
	if err != nil {
		serverError(w, r, "list category posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
