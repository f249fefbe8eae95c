// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

const (
	restPrefix         = "/rest/v1/"
	returnRepresentation = "return=representation"
	returnMinimal      = "return=minimal"
)

// Embedded resources for the article joins.
const (
	selectCategory = "category:categories(*)"
	selectTags     = "article_tags(tag:tags(*))"
)

// encode renders q as PostgREST query parameters.
func encode(q query.Query) (url.Values, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	params := url.Values{}

	sel := []string{"*"}
	if q.Has(query.JoinCategory) {
		sel = append(sel, selectCategory)
	}
	if q.Has(query.JoinTags) {
		sel = append(sel, selectTags)
	}
	params.Set("select", strings.Join(sel, ","))

	for _, f := range q.Filters {
		params.Add(f.Column, string(f.Op)+"."+formatValue(f.Value))
	}

	if len(q.Orders) > 0 {
		keys := make([]string, 0, len(q.Orders))
		for _, o := range q.Orders {
			keys = append(keys, o.Column+"."+string(o.Direction)+".nullslast")
		}
		params.Set("order", strings.Join(keys, ","))
	}

	if q.Max > 0 {
		params.Set("limit", strconv.Itoa(q.Max))
	}
	return params, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		if t == nil {
			return "null"
		}
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

func eq(column string, v any) url.Values {
	return url.Values{column: {"eq." + formatValue(v)}}
}

// SelectArticles fetches articles with the requested embeds in one call.
func (c *Client) SelectArticles(ctx context.Context, q query.Query) ([]models.ArticleRow, error) {
	if q.Table != query.Articles {
		return nil, fmt.Errorf("remote: query on %s passed to articles select", q.Table)
	}
	params, err := encode(q)
	if err != nil {
		return nil, err
	}
	var rows []models.ArticleRow
	if err := c.do(ctx, request{method: http.MethodGet, path: restPrefix + query.Articles, params: params}, &rows); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	for i := range rows {
		if q.Has(query.JoinTags) {
			rows[i].ArticleTags = dropDangling(rows[i].ArticleTags)
		} else {
			rows[i].ArticleTags = nil
		}
	}
	return rows, nil
}

// dropDangling removes associations whose tag no longer exists; the
// service embeds those as a null tag.
func dropDangling(links []models.ArticleTagRow) []models.ArticleTagRow {
	out := make([]models.ArticleTagRow, 0, len(links))
	for _, l := range links {
		if l.Tag.ID != uuid.Nil {
			out = append(out, l)
		}
	}
	return out
}

// SelectCategories fetches categories.
func (c *Client) SelectCategories(ctx context.Context, q query.Query) ([]models.Category, error) {
	var out []models.Category
	if err := c.selectTable(ctx, query.Categories, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectTags fetches tags.
func (c *Client) SelectTags(ctx context.Context, q query.Query) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.selectTable(ctx, query.Tags, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) selectTable(ctx context.Context, table string, q query.Query, out any) error {
	if q.Table != table {
		return fmt.Errorf("remote: query on %s passed to %s select", q.Table, table)
	}
	params, err := encode(q)
	if err != nil {
		return err
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: restPrefix + table, params: params}, out); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

// IncrementViewCount writes previous+1. The service offers no atomic
// increment through this API, so concurrent readers of the same article
// may overwrite each other's update; the last write wins.
func (c *Client) IncrementViewCount(ctx context.Context, articleID uuid.UUID, previous int) error {
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPrefix + query.Articles,
		params: eq("id", articleID),
		body:   map[string]int{"view_count": previous + 1},
		prefer: returnMinimal,
	}, nil)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// articlePayload is the write shape of an article. Optional fields are
// sent as explicit nulls.
type articlePayload struct {
	Title       string     `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Published   bool       `json:"published"`
	Featured    bool       `json:"featured"`
	ReadingTime int        `json:"reading_time"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func newArticlePayload(in models.ArticleInput) articlePayload {
	return articlePayload{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		CategoryID:  in.CategoryID,
		Published:   in.Published,
		Featured:    in.Featured,
		ReadingTime: in.ReadingTime,
		PublishedAt: in.PublishedAt,
	}
}

// InsertArticle creates an article and returns the stored row.
func (c *Client) InsertArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	var out []models.Article
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + query.Articles,
		body:   []articlePayload{newArticlePayload(in)},
		prefer: returnRepresentation,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert article: empty response")
	}
	return &out[0], nil
}

// UpdateArticle overwrites the mutable fields and sets updated_at. It
// returns nil when no row matched.
func (c *Client) UpdateArticle(ctx context.Context, id uuid.UUID, in models.ArticleInput) (*models.Article, error) {
	payload := newArticlePayload(in)
	now := time.Now().UTC()
	payload.UpdatedAt = &now

	var out []models.Article
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPrefix + query.Articles,
		params: eq("id", id),
		body:   payload,
		prefer: returnRepresentation,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	return c.deleteWhere(ctx, query.Articles, eq("id", id))
}

// SetCoverImage records the cover image URL of an article.
func (c *Client) SetCoverImage(ctx context.Context, id uuid.UUID, coverURL string) error {
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPrefix + query.Articles,
		params: eq("id", id),
		body: map[string]any{
			"cover_image_url": coverURL,
			"updated_at":      time.Now().UTC(),
		},
		prefer: returnMinimal,
	}, nil)
	if err != nil {
		return fmt.Errorf("set cover image: %w", err)
	}
	return nil
}

// DeleteArticleTags removes every association of an article.
func (c *Client) DeleteArticleTags(ctx context.Context, articleID uuid.UUID) error {
	return c.deleteWhere(ctx, query.ArticleTags, eq("article_id", articleID))
}

// InsertArticleTags inserts association rows in one call.
func (c *Client) InsertArticleTags(ctx context.Context, links []models.ArticleTag) error {
	if len(links) == 0 {
		return nil
	}
	type link struct {
		ArticleID uuid.UUID `json:"article_id"`
		TagID     uuid.UUID `json:"tag_id"`
	}
	body := make([]link, 0, len(links))
	for _, l := range links {
		body = append(body, link{ArticleID: l.ArticleID, TagID: l.TagID})
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + query.ArticleTags,
		body:   body,
		prefer: returnMinimal,
	}, nil)
	if err != nil {
		return fmt.Errorf("insert article tags: %w", err)
	}
	return nil
}

type tagPayload struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// InsertTag creates a tag.
func (c *Client) InsertTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	var out []models.Tag
	if err := c.insert(ctx, query.Tags, []tagPayload{{Name: name, Slug: slug}}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert tags: empty response")
	}
	return &out[0], nil
}

// UpdateTag renames a tag. It returns nil when no row matched.
func (c *Client) UpdateTag(ctx context.Context, id uuid.UUID, name, slug string) (*models.Tag, error) {
	var out []models.Tag
	if err := c.update(ctx, query.Tags, id, tagPayload{Name: name, Slug: slug}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return c.deleteWhere(ctx, query.Tags, eq("id", id))
}

// InsertCategory creates a category.
func (c *Client) InsertCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var out []models.Category
	if err := c.insert(ctx, query.Categories, []models.CategoryInput{in}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert categories: empty response")
	}
	return &out[0], nil
}

// UpdateCategory overwrites a category. It returns nil when no row matched.
func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (*models.Category, error) {
	var out []models.Category
	if err := c.update(ctx, query.Categories, id, in, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.deleteWhere(ctx, query.Categories, eq("id", id))
}

// InsertContactSubmission stores a contact form message.
func (c *Client) InsertContactSubmission(ctx context.Context, s models.ContactSubmission) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + query.ContactSubmissions,
		body:   []models.ContactSubmission{s},
		prefer: returnMinimal,
	}, nil)
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

func (c *Client) insert(ctx context.Context, table string, body, out any) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + table,
		body:   body,
		prefer: returnRepresentation,
	}, out)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (c *Client) update(ctx context.Context, table string, id uuid.UUID, body, out any) error {
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPrefix + table,
		params: eq("id", id),
		body:   body,
		prefer: returnRepresentation,
	}, out)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (c *Client) deleteWhere(ctx context.Context, table string, params url.Values) error {
	if err := c.do(ctx, request{method: http.MethodDelete, path: restPrefix + table, params: params}, nil); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}
