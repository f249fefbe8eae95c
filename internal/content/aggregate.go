// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Flatten turns a joined row into the view projection by projecting the
// tag out of each association row. A row without associations gets an
// empty, non-nil tag list.
func Flatten(row models.ArticleRow) models.ArticleView {
	tags := make([]models.Tag, 0, len(row.ArticleTags))
	for _, at := range row.ArticleTags {
		tags = append(tags, at.Tag)
	}
	return models.ArticleView{
		Article:  row.Article,
		Category: row.Category,
		Tags:     tags,
	}
}

// FlattenTags applies Flatten to every row, preserving order.
func FlattenTags(rows []models.ArticleRow) []models.ArticleView {
	views := make([]models.ArticleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, Flatten(row))
	}
	return views
}

// FilterByTag keeps the articles carrying a tag with the given slug.
// An empty slug keeps everything.
func FilterByTag(views []models.ArticleView, tagSlug string) []models.ArticleView {
	if tagSlug == "" {
		return views
	}
	out := make([]models.ArticleView, 0, len(views))
	for _, v := range views {
		if models.HasTagSlug(v.Tags, tagSlug) {
			out = append(out, v)
		}
	}
	return out
}

// FilterBySearch keeps the articles whose title or excerpt contains text,
// case-insensitively. Blank text keeps everything.
func FilterBySearch(views []models.ArticleView, text string) []models.ArticleView {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return views
	}
	out := make([]models.ArticleView, 0, len(views))
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Title), needle) ||
			(v.Excerpt != nil && strings.Contains(strings.ToLower(*v.Excerpt), needle)) {
			out = append(out, v)
		}
	}
	return out
}

// excludeArticle drops the article with the given id.
func excludeArticle(views []models.ArticleView, id uuid.UUID) []models.ArticleView {
	out := views[:0]
	for _, v := range views {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

// TagIDs returns the ids of the view's tags in order.
func TagIDs(v models.ArticleView) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(v.Tags))
	for _, t := range v.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
