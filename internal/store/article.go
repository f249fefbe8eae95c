// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// ArticleStore handles articles and their tag associations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `a.id, a.title, a.subtitle, a.slug, a.content, a.excerpt, a.author_notes,
	a.category_id, a.featured, a.published, a.published_at, a.reading_time, a.view_count,
	a.cover_image_url, a.meta_title, a.meta_description, a.created_at, a.updated_at`

// joinedCategoryColumns are nullable because the category is left joined.
const joinedCategoryColumns = `c.id, c.name, c.slug, c.description, c.display_order, c.created_at`

// articleTagsJSON renders an article's tags in the nested association
// shape. Links to deleted tags drop out of the inner join.
const articleTagsJSON = `COALESCE((
	SELECT json_agg(json_build_object('tag', json_build_object(
		'id', t.id, 'name', t.name, 'slug', t.slug, 'created_at', t.created_at)) ORDER BY t.name)
	FROM article_tags lnk
	JOIN tags t ON t.id = lnk.tag_id
	WHERE lnk.article_id = a.id
), '[]'::json)`

func articleDest(a *models.Article) []any {
	return []any{
		&a.ID, &a.Title, &a.Subtitle, &a.Slug, &a.Content, &a.Excerpt, &a.AuthorNotes,
		&a.CategoryID, &a.Featured, &a.Published, &a.PublishedAt, &a.ReadingTime, &a.ViewCount,
		&a.CoverImageURL, &a.MetaTitle, &a.MetaDescription, &a.CreatedAt, &a.UpdatedAt,
	}
}

func scanArticle(row scanner) (*models.Article, error) {
	var a models.Article
	if err := row.Scan(articleDest(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// nullableCategory receives the left-joined category columns.
type nullableCategory struct {
	ID           *uuid.UUID
	Name         *string
	Slug         *string
	Description  *string
	DisplayOrder *int
	CreatedAt    sql.NullTime
}

func (c *nullableCategory) dest() []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.DisplayOrder, &c.CreatedAt}
}

func (c *nullableCategory) category() *models.Category {
	if c.ID == nil {
		return nil
	}
	cat := &models.Category{ID: *c.ID, Description: c.Description, CreatedAt: c.CreatedAt.Time}
	if c.Name != nil {
		cat.Name = *c.Name
	}
	if c.Slug != nil {
		cat.Slug = *c.Slug
	}
	if c.DisplayOrder != nil {
		cat.DisplayOrder = *c.DisplayOrder
	}
	return cat
}

// SelectArticles runs q as a single statement. The category join is a
// LEFT JOIN; the tags come back as a JSON array in the same row.
func (s *ArticleStore) SelectArticles(ctx context.Context, q query.Query) ([]models.ArticleRow, error) {
	if err := checkQuery(q, query.Articles); err != nil {
		return nil, err
	}

	withCategory := q.Has(query.JoinCategory)
	withTags := q.Has(query.JoinTags)

	b := &sqlBuilder{}
	stmt := "SELECT " + articleColumns
	if withCategory {
		stmt += ", " + joinedCategoryColumns
	}
	if withTags {
		stmt += ", " + articleTagsJSON
	}
	stmt += " FROM articles a"
	if withCategory {
		stmt += " LEFT JOIN categories c ON c.id = a.category_id"
	}
	stmt += b.where(q, "a") + orderBy(q, "a") + limitClause(q)

	rows, err := s.db.QueryContext(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}
	defer rows.Close()

	var items []models.ArticleRow
	for rows.Next() {
		var (
			row     models.ArticleRow
			cat     nullableCategory
			tagJSON []byte
		)
		dest := articleDest(&row.Article)
		if withCategory {
			dest = append(dest, cat.dest()...)
		}
		if withTags {
			dest = append(dest, &tagJSON)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if withCategory {
			row.Category = cat.category()
		}
		if withTags {
			if err := json.Unmarshal(tagJSON, &row.ArticleTags); err != nil {
				return nil, fmt.Errorf("decode article tags: %w", err)
			}
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

// IncrementViewCount adds one to the stored count in a single statement,
// so concurrent readers never lose an increment. previous is unused.
func (s *ArticleStore) IncrementViewCount(ctx context.Context, articleID uuid.UUID, previous int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// InsertArticle creates an article and returns it with the generated ID.
func (s *ArticleStore) InsertArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO articles AS a (title, subtitle, slug, excerpt, content, category_id,
		                           published, featured, reading_time, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+articleColumns,
		in.Title, in.Subtitle, in.Slug, in.Excerpt, in.Content, in.CategoryID,
		in.Published, in.Featured, in.ReadingTime, in.PublishedAt,
	)
	a, err := scanArticle(row)
	if err != nil {
		return nil, wrapErr("insert article", err)
	}
	return a, nil
}

// UpdateArticle overwrites the mutable fields and refreshes updated_at.
// Returns nil if no article has the given id.
func (s *ArticleStore) UpdateArticle(ctx context.Context, id uuid.UUID, in models.ArticleInput) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE articles AS a SET
			title = $1, subtitle = $2, slug = $3, excerpt = $4, content = $5,
			category_id = $6, published = $7, featured = $8, reading_time = $9,
			published_at = $10, updated_at = NOW()
		WHERE a.id = $11
		RETURNING `+articleColumns,
		in.Title, in.Subtitle, in.Slug, in.Excerpt, in.Content, in.CategoryID,
		in.Published, in.Featured, in.ReadingTime, in.PublishedAt, id,
	)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update article", err)
	}
	return a, nil
}

// DeleteArticle removes an article. Its associations cascade.
func (s *ArticleStore) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// SetCoverImage records the cover image URL of an article.
func (s *ArticleStore) SetCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles SET cover_image_url = $1, updated_at = NOW() WHERE id = $2
	`, url, id)
	if err != nil {
		return fmt.Errorf("set cover image: %w", err)
	}
	return nil
}

// DeleteArticleTags removes every association of an article.
func (s *ArticleStore) DeleteArticleTags(ctx context.Context, articleID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("delete article tags: %w", err)
	}
	return nil
}

// InsertArticleTags inserts association rows in one statement.
func (s *ArticleStore) InsertArticleTags(ctx context.Context, links []models.ArticleTag) error {
	if len(links) == 0 {
		return nil
	}
	articleIDs := make([]string, 0, len(links))
	tagIDs := make([]string, 0, len(links))
	for _, l := range links {
		articleIDs = append(articleIDs, l.ArticleID.String())
		tagIDs = append(tagIDs, l.TagID.String())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO article_tags (article_id, tag_id)
		SELECT * FROM unnest($1::uuid[], $2::uuid[])
	`, articleIDs, tagIDs)
	if err != nil {
		return wrapErr("insert article tags", err)
	}
	return nil
}

// ReplaceArticleTags swaps an article's tag set inside one transaction:
// either the new set is stored or the old one is kept.
func (s *ArticleStore) ReplaceArticleTags(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("delete article tags: %w", err)
	}

	if len(tagIDs) > 0 {
		ids := make([]string, 0, len(tagIDs))
		for _, id := range tagIDs {
			ids = append(ids, id.String())
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag_id)
			SELECT $1, unnest($2::uuid[])
		`, articleID, ids)
		if err != nil {
			return wrapErr("insert article tags", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit article tags: %w", err)
	}
	return nil
}
