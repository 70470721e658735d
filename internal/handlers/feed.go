// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"yorick/internal/markdown"
	"yorick/internal/models"
)

// feedLimit is the number of posts in the RSS feed.
const feedLimit = 20

// FeedSource supplies full published posts for the feed.
type FeedSource interface {
	ListAllPublished(ctx context.Context, limit int) ([]models.Post, error)
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// Feed serves the RSS 2.0 feed of published posts.
type Feed struct {
	title   string
	siteURL string
	posts   FeedSource
}

// NewFeed creates the feed handler. siteURL is the absolute base used for
// item links.
func NewFeed(title, siteURL string, posts FeedSource) *Feed {
	return &Feed{title: title, siteURL: strings.TrimRight(siteURL, "/"), posts: posts}
}

// ServeHTTP renders the feed. Post bodies are converted from Markdown.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	posts, err := f.posts.ListAllPublished(r.Context(), feedLimit)
	if err != nil {
		serverError(w, r, "list feed posts failed", err)
		return
	}

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		body, err := markdown.ToHTML(p.Content)
		if err != nil {
			slog.Warn("feed markdown render failed", "error", err, "slug", p.Slug)
			body = p.Content
		}
		published := p.CreatedAt
		if p.PublishedAt != nil {
			published = *p.PublishedAt
		}
		link := f.siteURL + p.Path()
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: body,
			Category:    p.Category,
			PubDate:     published.UTC().Format(time.RFC1123Z),
			GUID:        link,
		})
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       f.title,
			Link:        f.siteURL,
			Description: "A robot hand's grateful notes on human ingenuity.",
			Items:       items,
		},
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(feed); err != nil {
		slog.Error("feed encode failed", "error", err)
	}
}
