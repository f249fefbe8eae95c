// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to store tables
// and the read projections built from them. Optional fields are pointers
// and serialise as null rather than being omitted, so read and write
// shapes stay symmetric.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultReadingTime is the reading time in minutes assigned when an editor
// leaves the field empty.
const DefaultReadingTime = 5

// Article is a single piece of writing.
type Article struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Subtitle        *string    `json:"subtitle"`
	Slug            string     `json:"slug"`
	Content         string     `json:"content"`
	Excerpt         *string    `json:"excerpt"`
	AuthorNotes     *string    `json:"author_notes"`
	CategoryID      *uuid.UUID `json:"category_id"`
	Featured        bool       `json:"featured"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"published_at"`
	ReadingTime     int        `json:"reading_time"`
	ViewCount       int        `json:"view_count"`
	CoverImageURL   *string    `json:"cover_image_url"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ArticleTagRow is one row of the association join as a backend returns
// it: the linked tag nested under the association.
type ArticleTagRow struct {
	Tag Tag `json:"tag"`
}

// ArticleRow is the raw joined shape of an article read. Category and
// ArticleTags are populated only when the query asked for the join.
type ArticleRow struct {
	Article
	Category    *Category       `json:"category"`
	ArticleTags []ArticleTagRow `json:"article_tags"`
}

// ArticleView is the denormalised read model used for display: an article
// with its category and a flat tag list. Tags is never nil.
type ArticleView struct {
	Article
	Category *Category `json:"category"`
	Tags     []Tag     `json:"tags"`
}

// ArticleInput carries the fields an editor writes on create or update.
// Slug is derived from Title by the editor, never taken from the caller.
type ArticleInput struct {
	Title       string     `json:"title"`
	Subtitle    *string    `json:"subtitle"`
	Slug        string     `json:"-"`
	Excerpt     *string    `json:"excerpt"`
	Content     string     `json:"content"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Published   bool       `json:"published"`
	Featured    bool       `json:"featured"`
	ReadingTime int        `json:"reading_time"`

	// PublishedAt is stamped by the editor the first time the article is
	// saved as published.
	PublishedAt *time.Time `json:"-"`
}
