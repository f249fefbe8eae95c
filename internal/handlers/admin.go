// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/content"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/storage"
)

// MaxCoverBytes is the largest accepted cover image.
const MaxCoverBytes = 5 << 20

// Images stores uploaded cover images.
type Images interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// Admin serves the authenticated dashboard API.
type Admin struct {
	editor *content.Editor
	reader *content.Reader
	images Images
}

// NewAdmin creates a new Admin handler group. images may be nil, in which
// case cover uploads answer 503.
func NewAdmin(editor *content.Editor, reader *content.Reader, images Images) *Admin {
	return &Admin{editor: editor, reader: reader, images: images}
}

// parseID reads the {id} route parameter, writing a 400 when it is not a UUID.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// --- Articles ---

// articleRequest is the editor form. An absent or null tag_ids leaves the
// article's tags alone; an empty array clears them.
type articleRequest struct {
	models.ArticleInput
	TagIDs *[]uuid.UUID `json:"tag_ids"`
}

func (req articleRequest) tags() []uuid.UUID {
	if req.TagIDs == nil {
		return nil
	}
	if *req.TagIDs == nil {
		return []uuid.UUID{}
	}
	return *req.TagIDs
}

type saveResponse struct {
	Article *models.Article `json:"article"`
	// TagsError is set when the article was saved but its tags may not
	// match the selection.
	TagsError string `json:"tags_error,omitempty"`
}

// ListArticles returns every article, drafts included.
func (h *Admin) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.editor.ListAllArticles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"articles": articles})
}

// GetArticle returns one article and its tag ids for the editor.
func (h *Admin) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	art, err := h.editor.ArticleForEdit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if art == nil {
		render.Error(w, http.StatusNotFound, "article not found")
		return
	}
	render.OK(w, art)
}

// CreateArticle saves a new article.
func (h *Admin) CreateArticle(w http.ResponseWriter, r *http.Request) {
	h.saveArticle(w, r, nil)
}

// UpdateArticle overwrites an existing article.
func (h *Admin) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	h.saveArticle(w, r, &id)
}

func (h *Admin) saveArticle(w http.ResponseWriter, r *http.Request, id *uuid.UUID) {
	var req articleRequest
	if err := render.Decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateArticle(req.ArticleInput); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.editor.SaveArticle(r.Context(), id, req.ArticleInput, req.tags())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := saveResponse{Article: result.Article}
	if result.TagsErr != nil {
		resp.TagsError = "The article was saved, but its tags could not be updated."
	}
	if id == nil {
		render.Created(w, resp)
		return
	}
	render.OK(w, resp)
}

// DeleteArticle removes an article.
func (h *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.editor.DeleteArticle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w)
}

// UploadCover stores a multipart "file" as the article's cover image and
// removes the previous one from storage.
func (h *Admin) UploadCover(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		render.Error(w, http.StatusServiceUnavailable, "cover uploads are not configured")
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	art, err := h.editor.ArticleForEdit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if art == nil {
		render.Error(w, http.StatusNotFound, "article not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxCoverBytes+1<<20)
	if err := r.ParseMultipartForm(MaxCoverBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(w, http.StatusRequestEntityTooLarge, "cover image is too large (max 5 MB)")
			return
		}
		render.Error(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		render.FieldError(w, "file", "A cover image file is required")
		return
	}
	defer file.Close()

	if header.Size > MaxCoverBytes {
		render.Error(w, http.StatusRequestEntityTooLarge, "cover image is too large (max 5 MB)")
		return
	}

	contentType, err := sniffImage(file, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("cover read failed", "article_id", id, "error", err)
		render.Error(w, http.StatusBadRequest, "cover image could not be read")
		return
	}
	ext, ok := storage.CoverExtension(contentType)
	if !ok {
		render.Error(w, http.StatusUnsupportedMediaType, "cover must be a JPEG, PNG, WebP, GIF or AVIF image")
		return
	}

	key, err := storage.CoverKey(id, ext)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.images.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("cover upload failed", "article_id", id, "error", err)
		render.Error(w, http.StatusBadGateway, "cover image could not be stored")
		return
	}

	url := h.images.FileURL(key)
	if err := h.editor.SetCoverImage(r.Context(), id, url); err != nil {
		h.removeImage(r.Context(), key)
		writeError(w, r, err)
		return
	}

	if old := art.Article.CoverImageURL; old != nil {
		if oldKey, ok := h.images.ExtractKey(*old); ok {
			h.removeImage(r.Context(), oldKey)
		}
	}

	slog.Info("cover image uploaded", "article_id", id, "key", key, "size", header.Size)
	render.OK(w, map[string]string{"cover_image_url": url})
}

// removeImage deletes an object that is no longer referenced. Failure
// leaves an orphan in the bucket and is only logged.
func (h *Admin) removeImage(ctx context.Context, key string) {
	if err := h.images.Delete(ctx, key); err != nil {
		slog.Warn("cover cleanup failed", "key", key, "error", err)
	}
}

// sniffImage detects the content type from the first bytes of f and
// rewinds it. The declared type is used only when sniffing is inconclusive.
func sniffImage(f io.ReadSeeker, declared string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	ct := http.DetectContentType(head[:n])
	if ct == "application/octet-stream" && declared != "" {
		return declared, nil
	}
	return ct, nil
}

// --- Categories ---

// ListCategories returns all categories in display order.
func (h *Admin) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.reader.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"categories": cats})
}

// CreateCategory adds a category.
func (h *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCategory(in); err != nil {
		writeError(w, r, err)
		return
	}
	cat, err := h.editor.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Created(w, cat)
}

// UpdateCategory overwrites a category.
func (h *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in models.CategoryInput
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCategory(in); err != nil {
		writeError(w, r, err)
		return
	}
	cat, err := h.editor.UpdateCategory(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, cat)
}

// DeleteCategory removes a category.
func (h *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.editor.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w)
}

// --- Tags ---

type tagRequest struct {
	Name string `json:"name"`
}

// ListTags returns all tags by name.
func (h *Admin) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.reader.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, map[string]any{"tags": tags})
}

// CreateTag adds a tag.
func (h *Admin) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in tagRequest
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateTag(in.Name); err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.editor.CreateTag(r.Context(), in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Created(w, tag)
}

// UpdateTag renames a tag.
func (h *Admin) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in tagRequest
	if err := render.Decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateTag(in.Name); err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.editor.UpdateTag(r.Context(), id, in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.OK(w, tag)
}

// DeleteTag removes a tag.
func (h *Admin) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.editor.DeleteTag(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w)
}
