// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// ReadStore executes generic reads. Implementations parse rows into the
// entity model at their boundary; untyped rows never reach this package.
type ReadStore interface {
	SelectArticles(ctx context.Context, q query.Query) ([]models.ArticleRow, error)
	SelectCategories(ctx context.Context, q query.Query) ([]models.Category, error)
	SelectTags(ctx context.Context, q query.Query) ([]models.Tag, error)
}

// ViewCounter records a single article view. previous is the view count
// the reader observed; a backend may ignore it and increment atomically.
type ViewCounter interface {
	IncrementViewCount(ctx context.Context, articleID uuid.UUID, previous int) error
}

// WriteStore applies mutations, one store round-trip per call.
type WriteStore interface {
	InsertArticle(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	// UpdateArticle overwrites the mutable fields and refreshes updated_at.
	// It returns nil when no article has the given id.
	UpdateArticle(ctx context.Context, id uuid.UUID, in models.ArticleInput) (*models.Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	SetCoverImage(ctx context.Context, id uuid.UUID, url string) error

	DeleteArticleTags(ctx context.Context, articleID uuid.UUID) error
	InsertArticleTags(ctx context.Context, links []models.ArticleTag) error

	InsertTag(ctx context.Context, name, slug string) (*models.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, name, slug string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error

	InsertCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	InsertContactSubmission(ctx context.Context, s models.ContactSubmission) error
}

// Store is the full contract a backend provides.
type Store interface {
	ReadStore
	ViewCounter
	WriteStore
}

// TagReplacer is implemented by backends that can swap an article's tag
// set in a single transaction. The editor prefers it over the two-step
// delete-then-insert when available.
type TagReplacer interface {
	ReplaceArticleTags(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error
}
