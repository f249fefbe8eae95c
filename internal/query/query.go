// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query describes store reads independently of any backend: a table,
// equality predicates, an ordering, a row limit, and the joins to fetch.
// Backends translate a Query into SQL (store), URL parameters (remote), or
// evaluate it directly (memstore).
//
// Builder methods return modified copies, so a base query can be shared and
// refined per use case:
//
//	q := query.From(query.Articles).Eq("published", true).
//		OrderBy("published_at", query.Desc).Limit(6).Join(query.JoinCategory)
package query

import (
	"errors"
	"fmt"
	"slices"
)

// ErrConflict is returned by backends when a write would break a
// uniqueness rule, such as a repeated slug.
var ErrConflict = errors.New("conflict")

// Table names consumed by the content repository.
const (
	Categories         = "categories"
	Tags               = "tags"
	Articles           = "articles"
	ArticleTags        = "article_tags"
	ContactSubmissions = "contact_submissions"
)

// Op is a comparison operator in a filter predicate.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Join names a related collection fetched together with articles.
type Join string

const (
	// JoinCategory populates ArticleRow.Category.
	JoinCategory Join = "category"
	// JoinTags populates ArticleRow.ArticleTags.
	JoinTags Join = "tags"
)

// Filter is a single column predicate. Value is compared for equality.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Order is a single sort key.
type Order struct {
	Column    string
	Direction Direction
}

// Query is an immutable description of a read.
type Query struct {
	Table   string
	Filters []Filter
	Orders  []Order
	Joins   []Join
	// Max is the row limit; zero means unlimited.
	Max int
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

// Eq adds a column = value predicate.
func (q Query) Eq(column string, value any) Query {
	return q.where(Filter{Column: column, Op: OpEq, Value: value})
}

// Neq adds a column != value predicate.
func (q Query) Neq(column string, value any) Query {
	return q.where(Filter{Column: column, Op: OpNeq, Value: value})
}

// OrderBy appends a sort key.
func (q Query) OrderBy(column string, dir Direction) Query {
	q.Orders = append(slices.Clone(q.Orders), Order{Column: column, Direction: dir})
	return q
}

// Limit caps the number of rows returned.
func (q Query) Limit(n int) Query {
	q.Max = n
	return q
}

// Join requests related rows. Duplicate joins are ignored.
func (q Query) Join(joins ...Join) Query {
	out := slices.Clone(q.Joins)
	for _, j := range joins {
		if !slices.Contains(out, j) {
			out = append(out, j)
		}
	}
	q.Joins = out
	return q
}

// Has reports whether the query requests join j.
func (q Query) Has(j Join) bool {
	return slices.Contains(q.Joins, j)
}

// Validate checks that every referenced column is allowed for the table.
// Backends call it before translating, so a column name never reaches a
// store unchecked.
func (q Query) Validate() error {
	allowed, ok := columns[q.Table]
	if !ok {
		return fmt.Errorf("query: unknown table %q", q.Table)
	}
	for _, f := range q.Filters {
		if !allowed[f.Column] {
			return fmt.Errorf("query: unknown column %q on %s", f.Column, q.Table)
		}
		if f.Op != OpEq && f.Op != OpNeq {
			return fmt.Errorf("query: unsupported operator %q", f.Op)
		}
	}
	for _, o := range q.Orders {
		if !allowed[o.Column] {
			return fmt.Errorf("query: unknown order column %q on %s", o.Column, q.Table)
		}
		if o.Direction != Asc && o.Direction != Desc {
			return fmt.Errorf("query: unsupported direction %q", o.Direction)
		}
	}
	if len(q.Joins) > 0 && q.Table != Articles {
		return fmt.Errorf("query: joins are only supported on %s", Articles)
	}
	if q.Max < 0 {
		return fmt.Errorf("query: negative limit %d", q.Max)
	}
	return nil
}

func (q Query) where(f Filter) Query {
	q.Filters = append(slices.Clone(q.Filters), f)
	return q
}

// columns lists the storage columns per table that queries may reference.
var columns = map[string]map[string]bool{
	Categories: set("id", "name", "slug", "description", "display_order", "created_at"),
	Tags:       set("id", "name", "slug", "created_at"),
	Articles: set("id", "title", "subtitle", "slug", "content", "excerpt", "author_notes",
		"category_id", "featured", "published", "published_at", "reading_time", "view_count",
		"cover_image_url", "meta_title", "meta_description", "created_at", "updated_at"),
	ArticleTags: set("article_id", "tag_id"),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
