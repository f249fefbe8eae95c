// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore is an in-process backend holding every table in maps.
// It evaluates query.Query values directly and backs tests and local
// development (STORE_URL=memory://). Data is lost when the process exits.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// ErrDuplicateSlug is returned when a write would repeat an existing slug.
var ErrDuplicateSlug = fmt.Errorf("memstore: duplicate slug: %w", query.ErrConflict)

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	categories map[uuid.UUID]models.Category
	tags       map[uuid.UUID]models.Tag
	articles   map[uuid.UUID]models.Article
	links      []models.ArticleTag
	contacts   []models.ContactSubmission
	users      map[uuid.UUID]models.User

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		categories: make(map[uuid.UUID]models.Category),
		tags:       make(map[uuid.UUID]models.Tag),
		articles:   make(map[uuid.UUID]models.Article),
		users:      make(map[uuid.UUID]models.User),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SelectArticles evaluates q against the articles table.
func (s *Store) SelectArticles(ctx context.Context, q query.Query) ([]models.ArticleRow, error) {
	if err := checkQuery(q, query.Articles); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if matches(q.Filters, func(col string) any { return articleColumn(a, col) }) {
			matched = append(matched, a)
		}
	}
	sortRows(matched, q.Orders, articleColumn)
	matched = limit(matched, q.Max)

	rows := make([]models.ArticleRow, 0, len(matched))
	for _, a := range matched {
		row := models.ArticleRow{Article: a}
		if q.Has(query.JoinCategory) && a.CategoryID != nil {
			if c, ok := s.categories[*a.CategoryID]; ok {
				row.Category = &c
			}
		}
		if q.Has(query.JoinTags) {
			row.ArticleTags = s.articleTags(a.ID)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// articleTags returns the tags linked to an article, skipping links to
// deleted tags. Caller holds the read lock.
func (s *Store) articleTags(articleID uuid.UUID) []models.ArticleTagRow {
	out := []models.ArticleTagRow{}
	for _, l := range s.links {
		if l.ArticleID != articleID {
			continue
		}
		if t, ok := s.tags[l.TagID]; ok {
			out = append(out, models.ArticleTagRow{Tag: t})
		}
	}
	return out
}

// SelectCategories evaluates q against the categories table.
func (s *Store) SelectCategories(ctx context.Context, q query.Query) ([]models.Category, error) {
	if err := checkQuery(q, query.Categories); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectFrom(s.categories, q, categoryColumn), nil
}

// SelectTags evaluates q against the tags table.
func (s *Store) SelectTags(ctx context.Context, q query.Query) ([]models.Tag, error) {
	if err := checkQuery(q, query.Tags); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectFrom(s.tags, q, tagColumn), nil
}

// IncrementViewCount adds one to the stored count, ignoring previous.
func (s *Store) IncrementViewCount(ctx context.Context, articleID uuid.UUID, previous int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok {
		return nil
	}
	a.ViewCount++
	s.articles[articleID] = a
	return nil
}

// InsertArticle creates an article and returns it with its new id.
func (s *Store) InsertArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.articleSlugTaken(in.Slug, uuid.Nil) {
		return nil, fmt.Errorf("insert article %q: %w", in.Slug, ErrDuplicateSlug)
	}
	now := s.now()
	a := models.Article{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyArticleInput(&a, in)
	s.articles[a.ID] = a
	return &a, nil
}

// UpdateArticle overwrites the mutable fields. It returns nil when the
// article does not exist.
func (s *Store) UpdateArticle(ctx context.Context, id uuid.UUID, in models.ArticleInput) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	if s.articleSlugTaken(in.Slug, id) {
		return nil, fmt.Errorf("update article %q: %w", in.Slug, ErrDuplicateSlug)
	}
	applyArticleInput(&a, in)
	a.UpdatedAt = s.now()
	s.articles[id] = a
	return &a, nil
}

// DeleteArticle removes an article and its tag links.
func (s *Store) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, id)
	s.links = slices.DeleteFunc(s.links, func(l models.ArticleTag) bool { return l.ArticleID == id })
	return nil
}

// SetCoverImage sets the cover image URL of an article.
func (s *Store) SetCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil
	}
	a.CoverImageURL = &url
	a.UpdatedAt = s.now()
	s.articles[id] = a
	return nil
}

// DeleteArticleTags removes every link of an article.
func (s *Store) DeleteArticleTags(ctx context.Context, articleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = slices.DeleteFunc(s.links, func(l models.ArticleTag) bool { return l.ArticleID == articleID })
	return nil
}

// InsertArticleTags appends links. Linking an article twice to the same
// tag is rejected, like the composite key of the SQL schema.
func (s *Store) InsertArticleTags(ctx context.Context, links []models.ArticleTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range links {
		if _, ok := s.articles[l.ArticleID]; !ok {
			return fmt.Errorf("insert article tag: article %s does not exist", l.ArticleID)
		}
		if slices.Contains(s.links, l) {
			return fmt.Errorf("insert article tag: link %s/%s already exists", l.ArticleID, l.TagID)
		}
	}
	s.links = append(s.links, links...)
	return nil
}

// InsertTag creates a tag.
func (s *Store) InsertTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Slug == slug {
			return nil, fmt.Errorf("insert tag %q: %w", slug, ErrDuplicateSlug)
		}
	}
	t := models.Tag{ID: uuid.New(), Name: name, Slug: slug, CreatedAt: s.now()}
	s.tags[t.ID] = t
	return &t, nil
}

// UpdateTag renames a tag. It returns nil when the tag does not exist.
func (s *Store) UpdateTag(ctx context.Context, id uuid.UUID, name, slug string) (*models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, nil
	}
	for _, other := range s.tags {
		if other.ID != id && other.Slug == slug {
			return nil, fmt.Errorf("update tag %q: %w", slug, ErrDuplicateSlug)
		}
	}
	t.Name, t.Slug = name, slug
	s.tags[id] = t
	return &t, nil
}

// DeleteTag removes a tag. Links to it stay behind.
func (s *Store) DeleteTag(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, id)
	return nil
}

// InsertCategory creates a category.
func (s *Store) InsertCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categorySlugTaken(in.Slug, uuid.Nil) {
		return nil, fmt.Errorf("insert category %q: %w", in.Slug, ErrDuplicateSlug)
	}
	c := models.Category{
		ID:           uuid.New(),
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
		CreatedAt:    s.now(),
	}
	s.categories[c.ID] = c
	return &c, nil
}

// UpdateCategory overwrites a category. It returns nil when the category
// does not exist.
func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	if s.categorySlugTaken(in.Slug, id) {
		return nil, fmt.Errorf("update category %q: %w", in.Slug, ErrDuplicateSlug)
	}
	c.Name, c.Slug, c.Description, c.DisplayOrder = in.Name, in.Slug, in.Description, in.DisplayOrder
	s.categories[id] = c
	return &c, nil
}

// DeleteCategory removes a category. Articles keep their category_id.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

// InsertContactSubmission records a contact form message.
func (s *Store) InsertContactSubmission(ctx context.Context, sub models.ContactSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, sub)
	return nil
}

// ContactSubmissions returns a copy of every stored submission.
func (s *Store) ContactSubmissions() []models.ContactSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts)
}

func (s *Store) articleSlugTaken(slug string, except uuid.UUID) bool {
	for _, a := range s.articles {
		if a.ID != except && a.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) categorySlugTaken(slug string, except uuid.UUID) bool {
	for _, c := range s.categories {
		if c.ID != except && c.Slug == slug {
			return true
		}
	}
	return false
}

func applyArticleInput(a *models.Article, in models.ArticleInput) {
	a.Title = in.Title
	a.Subtitle = in.Subtitle
	a.Slug = in.Slug
	a.Excerpt = in.Excerpt
	a.Content = in.Content
	a.CategoryID = in.CategoryID
	a.Published = in.Published
	a.Featured = in.Featured
	a.ReadingTime = in.ReadingTime
	a.PublishedAt = in.PublishedAt
}

func checkQuery(q query.Query, table string) error {
	if q.Table != table {
		return fmt.Errorf("memstore: query on %s passed to %s select", q.Table, table)
	}
	return q.Validate()
}

func selectFrom[T any](table map[uuid.UUID]T, q query.Query, column func(T, string) any) []T {
	out := make([]T, 0, len(table))
	for _, row := range table {
		if matches(q.Filters, func(col string) any { return column(row, col) }) {
			out = append(out, row)
		}
	}
	sortRows(out, q.Orders, column)
	return limit(out, q.Max)
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// matches applies SQL comparison semantics: a NULL column satisfies
// neither eq nor neq.
func matches(filters []query.Filter, column func(string) any) bool {
	for _, f := range filters {
		got := deref(column(f.Column))
		if got == nil {
			return false
		}
		equal := got == deref(f.Value)
		if f.Op == query.OpEq && !equal || f.Op == query.OpNeq && equal {
			return false
		}
	}
	return true
}

// sortRows orders rows by the given keys, nulls last. Ties fall back to
// the row's first column so results are stable across map iteration.
func sortRows[T any](rows []T, orders []query.Order, column func(T, string) any) {
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, o := range orders {
			c := compareNullsLast(deref(column(a, o.Column)), deref(column(b, o.Column)), o.Direction)
			if c != 0 {
				return c
			}
		}
		return strings.Compare(fmt.Sprint(column(a, "id")), fmt.Sprint(column(b, "id")))
	})
}

func compareNullsLast(a, b any, dir query.Direction) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c := compareValues(a, b)
	if dir == query.Desc {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		return cmp.Compare(av, b.(string))
	case int:
		return cmp.Compare(av, b.(int))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case time.Time:
		return av.Compare(b.(time.Time))
	case uuid.UUID:
		return strings.Compare(av.String(), b.(uuid.UUID).String())
	}
	return 0
}

// deref unwraps nullable column values so they compare by value.
func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *uuid.UUID:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func articleColumn(a models.Article, col string) any {
	switch col {
	case "id":
		return a.ID
	case "title":
		return a.Title
	case "subtitle":
		return a.Subtitle
	case "slug":
		return a.Slug
	case "content":
		return a.Content
	case "excerpt":
		return a.Excerpt
	case "author_notes":
		return a.AuthorNotes
	case "category_id":
		return a.CategoryID
	case "featured":
		return a.Featured
	case "published":
		return a.Published
	case "published_at":
		return a.PublishedAt
	case "reading_time":
		return a.ReadingTime
	case "view_count":
		return a.ViewCount
	case "cover_image_url":
		return a.CoverImageURL
	case "meta_title":
		return a.MetaTitle
	case "meta_description":
		return a.MetaDescription
	case "created_at":
		return a.CreatedAt
	case "updated_at":
		return a.UpdatedAt
	}
	return nil
}

func categoryColumn(c models.Category, col string) any {
	switch col {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "slug":
		return c.Slug
	case "description":
		return c.Description
	case "display_order":
		return c.DisplayOrder
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func tagColumn(t models.Tag, col string) any {
	switch col {
	case "id":
		return t.ID
	case "name":
		return t.Name
	case "slug":
		return t.Slug
	case "created_at":
		return t.CreatedAt
	}
	return nil
}
