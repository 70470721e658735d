package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// pathParam returns the decoded value of a chi URL parameter. chi routes on
// URL.RawPath when the request path holds escaped reserved characters such
// as %26 or %2F, and then hands back the still-escaped segment.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	s, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", key, err)
	}
	return s, nil
}

// badPathParam answers a plain 400 for an undecodable URL parameter.
func badPathParam(w http.ResponseWriter) {
	http.Error(w, "malformed path parameter", http.StatusBadRequest)
}
