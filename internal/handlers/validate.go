package handlers

import (
	"strings"
	"unicode/utf8"

	"yorick/internal/models"
)

// Validation limits for post fields.
const (
	maxTitleLen   = 300
	maxContentLen = 100_000
)

// validatePostUpdate checks the provided fields of an admin update and
// returns the first error found.
func validatePostUpdate(u models.PostUpdate) string {
	if u.Empty() {
		return "no fields to update"
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return "title must not be empty"
		}
		if utf8.RuneCountInString(title) > maxTitleLen {
			return "title is too long (max 300 characters)"
		}
	}
	if u.Content != nil && utf8.RuneCountInString(*u.Content) > maxContentLen {
		return "content is too long (max 100,000 characters)"
	}
	if u.Status != nil && !u.Status.Valid() {
		return "status must be draft, published or archived"
	}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		return "category_id must be positive"
	}
	return ""
}
