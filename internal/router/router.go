// Package router wires the HTTP routes and middleware chains of the blog
// API: a public read-only group, the admin group and the RSS feed.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"yorick/internal/handlers"
	"yorick/internal/middleware"
)

// New creates the chi router. limiter applies to everything under /api.
func New(api *handlers.API, admin *handlers.Admin, feed http.Handler, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Get("/", api.Root)
		r.Get("/posts/latest", api.LatestPosts)
		r.Get("/posts/{slug}", api.Post)
		r.Get("/categories", api.Categories)
		r.Get("/categories/{name}", api.CategoryPosts)
		r.Method(http.MethodGet, "/feed.xml", feed)

		// Authentication is provided in front of the service.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/posts", admin.Drafts)
			r.Get("/posts/{slug}", admin.Post)
			r.Put("/posts/{slug}", admin.UpdatePost)
			r.Delete("/posts/{slug}", admin.DeletePost)
			r.Get("/categories", admin.Categories)
		})
	})

	return r
}
