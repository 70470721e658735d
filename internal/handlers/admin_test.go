// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yorick/internal/models"
)

func newTestAdmin(s *memStore, now time.Time) *Admin {
	a := NewAdmin(s, s)
	a.now = func() time.Time { return now }
	return a
}

func putRequest(slug, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/admin/posts/"+slug, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return withChiURLParam(req, "slug", slug)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestDrafts_OnlyDrafts(t *testing.T) {
	admin := newTestAdmin(newMemStore(), time.Now())

	rec := httptest.NewRecorder()
	admin.Drafts(rec, httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	var posts []models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "cave-paintings" {
		t.Errorf("got %+v, want only cave-paintings", posts)
	}
}

func TestAdminPost_AnyStatus(t *testing.T) {
	admin := newTestAdmin(newMemStore(), time.Now())

	for _, slug := range []string{"the-abacus", "cave-paintings", "old-news"} {
		req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/posts/"+slug, nil), "slug", slug)
		rec := httptest.NewRecorder()
		admin.Post(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got status %d, want %d", slug, rec.Code, http.StatusOK)
		}
	}

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/posts/missing", nil), "slug", "missing")
	rec := httptest.NewRecorder()
	admin.Post(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdatePost_PartialFields(t *testing.T) {
	s := newMemStore()
	admin := newTestAdmin(s, time.Now())

	rec := httptest.NewRecorder()
	admin.UpdatePost(rec, putRequest("cave-paintings", `{"title":"Hands on Stone"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.Title != "Hands on Stone" {
		t.Errorf("title: got %q", post.Title)
	}
	if post.Content != "Ochre." || post.Status != models.PostStatusDraft {
		t.Errorf("untouched fields changed: %+v", post)
	}
	if post.PublishedAt != nil {
		t.Error("published_at must stay null for a draft")
	}
}

func TestUpdatePost_PublishStampsPublishedAt(t *testing.T) {
	s := newMemStore()
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	admin := newTestAdmin(s, now)

	rec := httptest.NewRecorder()
	admin.UpdatePost(rec, putRequest("cave-paintings", `{"status":"published"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.Status != models.PostStatusPublished {
		t.Errorf("status: got %q", post.Status)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(now) {
		t.Errorf("published_at: got %v, want %v", post.PublishedAt, now)
	}
}

func TestUpdatePost_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty object", `{}`, "no fields to update"},
		{"only unknown fields", `{"slug":"new-slug","author":"x"}`, "no fields to update"},
		{"invalid json", `{"title":`, "invalid JSON"},
		{"unknown status", `{"status":"scheduled"}`, "status must be"},
		{"blank title", `{"title":""}`, "title must not be empty"},
		{"wrong type", `{"category_id":"two"}`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			admin := newTestAdmin(s, time.Now())

			rec := httptest.NewRecorder()
			admin.UpdatePost(rec, putRequest("cave-paintings", tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if msg := errorMessage(t, rec); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error: got %q, want it to contain %q", msg, tt.wantMsg)
			}
			if s.updates != 0 {
				t.Errorf("a rejected update must not write, got %d writes", s.updates)
			}
		})
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	admin := newTestAdmin(newMemStore(), time.Now())

	rec := httptest.NewRecorder()
	admin.UpdatePost(rec, putRequest("missing", `{"title":"x"}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdatePost_StoreFailure(t *testing.T) {
	s := newMemStore()
	s.err = errStoreDown
	admin := newTestAdmin(s, time.Now())

	rec := httptest.NewRecorder()
	admin.UpdatePost(rec, putRequest("looms", `{"title":"x"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if msg := errorMessage(t, rec); msg == "" {
		t.Error("expected an error message")
	}
}

func TestDeletePost(t *testing.T) {
	s := newMemStore()
	admin := newTestAdmin(s, time.Now())
	before := s.count()

	del := func() *httptest.ResponseRecorder {
		req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/posts/looms", nil), "slug", "looms")
		rec := httptest.NewRecorder()
		admin.DeletePost(rec, req)
		return rec
	}

	rec := del()
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected a message")
	}
	if s.count() != before-1 {
		t.Errorf("count: got %d, want %d", s.count(), before-1)
	}

	rec = del()
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
	if s.count() != before-1 {
		t.Errorf("second delete changed the row count to %d", s.count())
	}
}

func TestDeletePost_StoreFailure(t *testing.T) {
	s := newMemStore()
	s.err = errStoreDown
	admin := newTestAdmin(s, time.Now())

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/posts/looms", nil), "slug", "looms")
	rec := httptest.NewRecorder()
	admin.DeletePost(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestAdminCategories_All(t *testing.T) {
	admin := newTestAdmin(newMemStore(), time.Now())

	rec := httptest.NewRecorder()
	admin.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/admin/categories", nil))

	var cats []models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	if strings.Join(names, ",") != "Art,Computing,Medicine" {
		t.Errorf("names: got %v", names)
	}
}
