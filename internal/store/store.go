// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store is the PostgreSQL backend. Each store struct wraps a
// *sql.DB and exposes typed query methods; Store bundles them into the
// full backend the content repository consumes.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/query"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for a duplicate key.
const uniqueViolation = "23505"

// Store is the PostgreSQL implementation of the content backend.
type Store struct {
	*ArticleStore
	*CategoryStore
	*TagStore
	*ContactStore
}

// New creates a Store over db.
func New(db *sql.DB) *Store {
	return &Store{
		ArticleStore:  NewArticleStore(db),
		CategoryStore: NewCategoryStore(db),
		TagStore:      NewTagStore(db),
		ContactStore:  NewContactStore(db),
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// wrapErr annotates err with op and marks unique violations as
// query.ErrConflict.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %w", op, query.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// sqlBuilder accumulates positional arguments while a statement is
// rendered.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where renders the filters of q against alias. Column names have been
// checked by query.Validate and are safe to interpolate.
func (b *sqlBuilder) where(q query.Query, alias string) string {
	if len(q.Filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		op := "="
		if f.Op == query.OpNeq {
			op = "<>"
		}
		parts = append(parts, alias+"."+f.Column+" "+op+" "+b.arg(f.Value))
	}
	return " WHERE " + strings.Join(parts, " AND ")
}

// orderBy renders the sort keys of q. NULLs sort last in both directions.
func orderBy(q query.Query, alias string) string {
	if len(q.Orders) == 0 {
		return ""
	}
	parts := make([]string, 0, len(q.Orders))
	for _, o := range q.Orders {
		dir := "ASC"
		if o.Direction == query.Desc {
			dir = "DESC"
		}
		parts = append(parts, alias+"."+o.Column+" "+dir+" NULLS LAST")
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func limitClause(q query.Query) string {
	if q.Max <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(q.Max)
}

// checkQuery validates q and that it targets table.
func checkQuery(q query.Query, table string) error {
	if q.Table != table {
		return fmt.Errorf("query on %s passed to %s select", q.Table, table)
	}
	return q.Validate()
}
