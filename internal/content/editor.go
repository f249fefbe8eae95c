// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
	"inkwell/internal/slug"
)

// SaveResult is the outcome of a successful article save. TagsErr is set
// when the article was written but replacing its tags failed; it wraps
// ErrTagsInconsistent and the article may carry fewer tags than selected.
type SaveResult struct {
	Article *models.Article
	TagsErr error
}

// ArticleForEdit is an article with its tag ids, drafts included.
type ArticleForEdit struct {
	Article models.ArticleView `json:"article"`
	TagIDs  []uuid.UUID        `json:"tag_ids"`
}

// Editor applies dashboard mutations.
type Editor struct {
	store Store
	now   func() time.Time
}

// NewEditor creates an Editor writing through store.
func NewEditor(store Store) *Editor {
	return &Editor{store: store, now: time.Now}
}

// SaveArticle creates the article when id is nil and overwrites it
// otherwise. The slug is recomputed from the title on every save.
//
// tagIDs nil leaves the tag associations alone; any non-nil slice,
// including an empty one, replaces them after the article is written.
func (e *Editor) SaveArticle(ctx context.Context, id *uuid.UUID, in models.ArticleInput, tagIDs []uuid.UUID) (SaveResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return SaveResult{}, invalid("title", "Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return SaveResult{}, invalid("content", "Content is required")
	}
	if in.ReadingTime <= 0 {
		in.ReadingTime = models.DefaultReadingTime
	}
	in.Subtitle = nullIfEmpty(in.Subtitle)
	in.Excerpt = nullIfEmpty(in.Excerpt)
	in.Slug = slug.FromTitle(in.Title)

	if in.CategoryID != nil {
		if err := e.requireCategory(ctx, *in.CategoryID); err != nil {
			return SaveResult{}, err
		}
	}

	var (
		saved *models.Article
		err   error
	)
	if id == nil {
		saved, err = e.create(ctx, in)
	} else {
		saved, err = e.update(ctx, *id, in)
	}
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{Article: saved}
	if tagIDs != nil {
		if err := e.replaceTags(ctx, saved.ID, tagIDs); err != nil {
			slog.Error("replace article tags failed", "article_id", saved.ID, "error", err)
			result.TagsErr = fmt.Errorf("%w: %w", ErrTagsInconsistent, err)
		}
	}

	slog.Info("article saved", "article_id", saved.ID, "slug", saved.Slug, "created", id == nil)
	return result, nil
}

func (e *Editor) create(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	if in.Published {
		now := e.now().UTC()
		in.PublishedAt = &now
	}
	saved, err := e.store.InsertArticle(ctx, in)
	if err != nil {
		return nil, saveFailed("create article", err)
	}
	return saved, nil
}

func (e *Editor) update(ctx context.Context, id uuid.UUID, in models.ArticleInput) (*models.Article, error) {
	existing, err := e.findArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	// The first publish stamps published_at; later saves keep it.
	in.PublishedAt = existing.PublishedAt
	if in.Published && in.PublishedAt == nil {
		now := e.now().UTC()
		in.PublishedAt = &now
	}

	saved, err := e.store.UpdateArticle(ctx, id, in)
	if err != nil {
		return nil, saveFailed("update article", err)
	}
	if saved == nil {
		return nil, ErrNotFound
	}
	return saved, nil
}

// replaceTags swaps the article's tag set, atomically when the backend
// supports it.
func (e *Editor) replaceTags(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	tagIDs = dedupe(tagIDs)
	if r, ok := e.store.(TagReplacer); ok {
		return r.ReplaceArticleTags(ctx, articleID, tagIDs)
	}

	if err := e.store.DeleteArticleTags(ctx, articleID); err != nil {
		return fmt.Errorf("delete article tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.ArticleTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.ArticleTag{ArticleID: articleID, TagID: tagID})
	}
	if err := e.store.InsertArticleTags(ctx, links); err != nil {
		return fmt.Errorf("insert article tags: %w", err)
	}
	return nil
}

// DeleteArticle removes an article. Its tag associations go with it.
func (e *Editor) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	if err := e.store.DeleteArticle(ctx, id); err != nil {
		return saveFailed("delete article", err)
	}
	slog.Info("article deleted", "article_id", id)
	return nil
}

// SetCoverImage records the public URL of an uploaded cover image.
func (e *Editor) SetCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	if err := e.store.SetCoverImage(ctx, id, url); err != nil {
		return saveFailed("set cover image", err)
	}
	return nil
}

// ListAllArticles returns every article, drafts included, newest created
// first, with category and tags.
func (e *Editor) ListAllArticles(ctx context.Context) ([]models.ArticleView, error) {
	q := query.From(query.Articles).
		OrderBy("created_at", query.Desc).
		Join(query.JoinCategory, query.JoinTags)
	rows, err := e.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("list all articles", err)
	}
	return FlattenTags(rows), nil
}

// ArticleForEdit returns the article with the given id regardless of its
// published state, or nil.
func (e *Editor) ArticleForEdit(ctx context.Context, id uuid.UUID) (*ArticleForEdit, error) {
	q := query.From(query.Articles).
		Eq("id", id).
		Join(query.JoinCategory, query.JoinTags).
		Limit(1)
	rows, err := e.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("load article for edit", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	view := Flatten(rows[0])
	return &ArticleForEdit{Article: view, TagIDs: TagIDs(view)}, nil
}

// CreateTag inserts a tag with a slug derived from its name.
func (e *Editor) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	tag, err := e.store.InsertTag(ctx, name, slug.FromTitle(name))
	if err != nil {
		return nil, saveFailed("create tag", err)
	}
	return tag, nil
}

// UpdateTag renames a tag and recomputes its slug.
func (e *Editor) UpdateTag(ctx context.Context, id uuid.UUID, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	tag, err := e.store.UpdateTag(ctx, id, name, slug.FromTitle(name))
	if err != nil {
		return nil, saveFailed("update tag", err)
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

// DeleteTag removes a tag. Association rows that reference it are left in
// place.
func (e *Editor) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if err := e.store.DeleteTag(ctx, id); err != nil {
		return saveFailed("delete tag", err)
	}
	return nil
}

// CreateCategory inserts a category. An empty slug is derived from the name.
func (e *Editor) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	cat, err := e.store.InsertCategory(ctx, in)
	if err != nil {
		return nil, saveFailed("create category", err)
	}
	return cat, nil
}

// UpdateCategory overwrites a category.
func (e *Editor) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (*models.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	cat, err := e.store.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, saveFailed("update category", err)
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// DeleteCategory removes a category. Articles keep their category_id.
func (e *Editor) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := e.store.DeleteCategory(ctx, id); err != nil {
		return saveFailed("delete category", err)
	}
	return nil
}

func (e *Editor) requireCategory(ctx context.Context, id uuid.UUID) error {
	cats, err := e.store.SelectCategories(ctx, query.From(query.Categories).Eq("id", id).Limit(1))
	if err != nil {
		return loadFailed("check category", err)
	}
	if len(cats) == 0 {
		return invalid("category_id", "Category does not exist")
	}
	return nil
}

func (e *Editor) findArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	rows, err := e.store.SelectArticles(ctx, query.From(query.Articles).Eq("id", id).Limit(1))
	if err != nil {
		return nil, loadFailed("find article", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].Article, nil
}

func normalizeCategory(in models.CategoryInput) (models.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("name", "Name is required")
	}
	in.Slug = slug.Generate(in.Slug)
	if in.Slug == "" {
		in.Slug = slug.FromTitle(in.Name)
	}
	in.Description = nullIfEmpty(in.Description)
	return in, nil
}

// nullIfEmpty maps a blank optional string to nil.
func nullIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func saveFailed(op string, err error) error {
	slog.Error(op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %w", ErrSaveFailed, op, err)
}
