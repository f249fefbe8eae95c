// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content is the content repository behind the writing site. Reader
// composes the public reads (featured list, filtered listing, article by
// slug, related articles) and the read-time side effects; Editor applies
// dashboard mutations. Both talk to a backend only through Store.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

const (
	// DefaultFeaturedLimit is the number of articles on the home page.
	DefaultFeaturedLimit = 6

	// DefaultRelatedLimit is the number of related articles under an article.
	DefaultRelatedLimit = 3

	// DefaultViewCountTimeout bounds a single best-effort view-count update.
	DefaultViewCountTimeout = 5 * time.Second
)

// Filters is the navigation state of the writing page.
type Filters struct {
	CategorySlug string
	TagSlug      string
	Search       string
}

// ArticlePage is everything the article view renders.
type ArticlePage struct {
	Article models.ArticleView   `json:"article"`
	Related []models.ArticleView `json:"related"`
}

// WritingPage is everything the listing view renders.
type WritingPage struct {
	Articles   []models.ArticleView `json:"articles"`
	Categories []models.Category    `json:"categories"`
	Tags       []models.Tag         `json:"tags"`
}

// Reader serves public, published-only reads.
type Reader struct {
	store            ReadStore
	views            ViewCounter
	viewCountTimeout time.Duration

	// inflight tracks background view-count updates.
	inflight sync.WaitGroup
}

// NewReader creates a Reader. views receives the best-effort view-count
// increments; timeout bounds each one (zero means DefaultViewCountTimeout).
func NewReader(store ReadStore, views ViewCounter, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = DefaultViewCountTimeout
	}
	return &Reader{store: store, views: views, viewCountTimeout: timeout}
}

// published is the base predicate of every public read.
func published() query.Query {
	return query.From(query.Articles).Eq("published", true)
}

// ListFeatured returns the newest published, featured articles with their
// category. limit <= 0 means DefaultFeaturedLimit.
func (r *Reader) ListFeatured(ctx context.Context, limit int) ([]models.ArticleView, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	q := published().
		Eq("featured", true).
		OrderBy("published_at", query.Desc).
		Limit(limit).
		Join(query.JoinCategory)

	rows, err := r.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("list featured articles", err)
	}
	return FlattenTags(rows), nil
}

// ListByFilters returns published articles, newest first, with category
// and tags. The category slug is resolved to an id and filtered at the
// store; the tag and search filters run in memory after flattening. An
// unknown category slug applies no category filter.
func (r *Reader) ListByFilters(ctx context.Context, f Filters) ([]models.ArticleView, error) {
	q := published().
		OrderBy("published_at", query.Desc).
		Join(query.JoinCategory, query.JoinTags)

	if f.CategorySlug != "" {
		cat, err := r.CategoryBySlug(ctx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			q = q.Eq("category_id", cat.ID)
		}
	}

	rows, err := r.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("list articles", err)
	}

	views := FlattenTags(rows)
	views = FilterByTag(views, f.TagSlug)
	views = FilterBySearch(views, f.Search)
	return views, nil
}

// GetBySlug returns the published article with the given slug, or nil when
// there is none. A draft and a missing slug look the same to the caller.
func (r *Reader) GetBySlug(ctx context.Context, slug string) (*models.ArticleView, error) {
	if slug == "" {
		return nil, nil
	}
	q := published().
		Eq("slug", slug).
		Join(query.JoinCategory, query.JoinTags).
		Limit(1)

	rows, err := r.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("get article by slug", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	view := Flatten(rows[0])
	return &view, nil
}

// ListRelated returns other published articles in the same category,
// newest first. No request is made when categoryID is nil. limit <= 0
// means DefaultRelatedLimit.
func (r *Reader) ListRelated(ctx context.Context, articleID uuid.UUID, categoryID *uuid.UUID, limit int) ([]models.ArticleView, error) {
	if categoryID == nil {
		return []models.ArticleView{}, nil
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	q := published().
		Eq("category_id", *categoryID).
		Neq("id", articleID).
		OrderBy("published_at", query.Desc).
		Limit(limit).
		Join(query.JoinCategory)

	rows, err := r.store.SelectArticles(ctx, q)
	if err != nil {
		return nil, loadFailed("list related articles", err)
	}
	return excludeArticle(FlattenTags(rows), articleID), nil
}

// ReadArticle loads the article page for slug: the article, its related
// articles, and a background view-count increment. The returned article
// carries the view count as read, before the increment. It returns nil
// when the article does not exist or is not published.
func (r *Reader) ReadArticle(ctx context.Context, slug string) (*ArticlePage, error) {
	view, err := r.GetBySlug(ctx, slug)
	if err != nil || view == nil {
		return nil, err
	}

	r.countView(ctx, view.ID, view.ViewCount)

	related, err := r.ListRelated(ctx, view.ID, view.CategoryID, DefaultRelatedLimit)
	if err != nil {
		slog.Warn("related articles unavailable", "article_id", view.ID, "error", err)
		related = []models.ArticleView{}
	}

	return &ArticlePage{Article: *view, Related: related}, nil
}

// WritingPage loads the filtered article list together with the category
// and tag navigation, concurrently.
func (r *Reader) WritingPage(ctx context.Context, f Filters) (*WritingPage, error) {
	page := &WritingPage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		articles, err := r.ListByFilters(gctx, f)
		page.Articles = articles
		return err
	})
	g.Go(func() error {
		categories, err := r.ListCategories(gctx)
		page.Categories = categories
		return err
	})
	g.Go(func() error {
		tags, err := r.ListTags(gctx)
		page.Tags = tags
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// ListCategories returns all categories in display order.
func (r *Reader) ListCategories(ctx context.Context) ([]models.Category, error) {
	q := query.From(query.Categories).
		OrderBy("display_order", query.Asc).
		OrderBy("name", query.Asc)
	cats, err := r.store.SelectCategories(ctx, q)
	if err != nil {
		return nil, loadFailed("list categories", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// ListTags returns all tags ordered by name.
func (r *Reader) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := r.store.SelectTags(ctx, query.From(query.Tags).OrderBy("name", query.Asc))
	if err != nil {
		return nil, loadFailed("list tags", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// CategoryBySlug returns the category with the given slug, or nil.
func (r *Reader) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	cats, err := r.store.SelectCategories(ctx, query.From(query.Categories).Eq("slug", slug).Limit(1))
	if err != nil {
		return nil, loadFailed("resolve category slug", err)
	}
	if len(cats) == 0 {
		return nil, nil
	}
	return &cats[0], nil
}

// Wait blocks until every background view-count update has finished.
func (r *Reader) Wait() {
	r.inflight.Wait()
}

// countView increments the view count in the background. The update keeps
// the request's values but not its cancellation, so it survives the
// response being written. Failures are logged and dropped.
func (r *Reader) countView(ctx context.Context, id uuid.UUID, previous int) {
	if r.views == nil {
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.viewCountTimeout)
		defer cancel()

		if err := r.views.IncrementViewCount(ctx, id, previous); err != nil {
			slog.Warn("view count increment failed", "article_id", id, "error", err)
		}
	}()
}

func loadFailed(op string, err error) error {
	slog.Error(op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, op, err)
}
