// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/content"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/render"
)

// maxFeaturedLimit caps the ?limit parameter of the featured list.
const maxFeaturedLimit = 24

// Public serves the unauthenticated read API and the contact form.
type Public struct {
	reader *content.Reader
	editor *content.Editor
}

// NewPublic creates a new Public handler group.
func NewPublic(reader *content.Reader, editor *content.Editor) *Public {
	return &Public{reader: reader, editor: editor}
}

// Featured lists the newest featured articles.
func (p *Public) Featured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxFeaturedLimit {
			render.Error(w, http.StatusBadRequest, "limit must be between 1 and 24")
			return
		}
		limit = n
	}

	articles, err := p.reader.ListFeatured(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"articles": articles})
}

// writingResponse is the listing page. Seq echoes the client's request
// sequence number so it can drop responses that arrive out of order.
type writingResponse struct {
	*content.WritingPage
	Seq *uint64 `json:"seq,omitempty"`
}

// Articles lists published articles filtered by ?category, ?tag and ?q,
// together with the category and tag navigation.
func (p *Public) Articles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := writingResponse{}
	if raw := q.Get("seq"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			render.Error(w, http.StatusBadRequest, "seq must be a non-negative integer")
			return
		}
		resp.Seq = &seq
	}

	page, err := p.reader.WritingPage(r.Context(), content.Filters{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		TagSlug:      strings.TrimSpace(q.Get("tag")),
		Search:       q.Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.WritingPage = page
	render.OK(w, resp)
}

// articleResponse adds the rendered body to the article page.
type articleResponse struct {
	*content.ArticlePage
	ContentHTML string `json:"content_html"`
}

// Article returns one published article by slug with its related
// articles, and counts the view.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := p.reader.ReadArticle(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if page == nil {
		render.Error(w, http.StatusNotFound, "article not found")
		return
	}

	html, err := markdown.ToHTML(page.Article.Content)
	if err != nil {
		// The raw markdown is still in the payload; clients fall back to it.
		slog.Warn("article markdown render failed", "slug", slug, "error", err)
	}
	render.OK(w, articleResponse{ArticlePage: page, ContentHTML: html})
}

// Categories lists all categories in display order.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.reader.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"categories": cats})
}

// Tags lists all tags by name.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := p.reader.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"tags": tags})
}

// Contact stores a contact form submission.
func (p *Public) Contact(w http.ResponseWriter, r *http.Request) {
	var sub models.ContactSubmission
	if err := render.Decode(w, r, &sub); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateContact(sub); err != nil {
		writeError(w, r, err)
		return
	}
	if err := p.editor.SubmitContact(r.Context(), sub); err != nil {
		writeError(w, r, err)
		return
	}
	render.Created(w, map[string]string{"status": "received"})
}
