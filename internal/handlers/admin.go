// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"yorick/internal/models"
	"yorick/internal/store"
)

// AdminPostStore is the post store surface used by admin handlers.
type AdminPostStore interface {
	ListDrafts(ctx context.Context) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	Update(ctx context.Context, slug string, u models.PostUpdate, now time.Time) (bool, error)
	DeleteBySlug(ctx context.Context, slug string) (bool, error)
}

// CategoryLister lists every category.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// Admin groups the draft management endpoints.
type Admin struct {
	posts      AdminPostStore
	categories CategoryLister
	now        func() time.Time
}

// NewAdmin creates the admin handler group.
func NewAdmin(posts AdminPostStore, categories CategoryLister) *Admin {
	return &Admin{posts: posts, categories: categories, now: time.Now}
}

// Drafts lists all draft posts, newest first.
func (a *Admin) Drafts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListDrafts(r.Context())
	if err != nil {
		serverError(w, r, "list drafts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Post returns a post of any status.
func (a *Admin) Post(w http.ResponseWriter, r *http.Request) {
	slug, err := pathParam(r, "slug")
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed slug")
		return
	}

	post, err := a.posts.FindBySlug(r.Context(), slug)
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

// UpdatePost applies a partial update and returns the updated post.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	slug, err := pathParam(r, "slug")
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed slug")
		return
	}

	var u models.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validatePostUpdate(u); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ok, err := a.posts.Update(r.Context(), slug, u, a.now())
	if errors.Is(err, store.ErrUnknownCategory) {
		writeError(w, http.StatusBadRequest, "category_id does not exist")
		return
	}
	if err != nil {
		slog.Error("update post failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}
	if !ok {
		notFound(w)
		return
	}

	post, err := a.posts.FindBySlug(r.Context(), slug)
	if err != nil {
		slog.Error("reload updated post failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "failed to load updated post")
		return
	}
	if post == nil {
		notFound(w)
		return
	}

	slog.Info("post updated", "slug", slug, "status", post.Status)
	writeJSON(w, http.StatusOK, post)
}

// DeletePost deletes a post by slug.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug, err := pathParam(r, "slug")
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed slug")
		return
	}

	ok, err := a.posts.DeleteBySlug(r.Context(), slug)
	if err != nil {
		slog.Error("delete post failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	if !ok {
		notFound(w)
		return
	}

	slog.Info("post deleted", "slug", slug)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// Categories lists every category, alphabetically.
func (a *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		serverError(w, r, "list categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
