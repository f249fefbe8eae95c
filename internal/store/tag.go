// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/query"
)

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `t.id, t.name, t.slug, t.created_at`

func scanTag(row scanner) (*models.Tag, error) {
	var t models.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// SelectTags runs q against the tags table.
func (s *TagStore) SelectTags(ctx context.Context, q query.Query) ([]models.Tag, error) {
	if err := checkQuery(q, query.Tags); err != nil {
		return nil, err
	}
	b := &sqlBuilder{}
	stmt := "SELECT " + tagColumns + " FROM tags t" + b.where(q, "t") + orderBy(q, "t") + limitClause(q)

	rows, err := s.db.QueryContext(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// InsertTag creates a tag.
func (s *TagStore) InsertTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tags AS t (name, slug) VALUES ($1, $2)
		RETURNING `+tagColumns, name, slug)
	t, err := scanTag(row)
	if err != nil {
		return nil, wrapErr("create tag", err)
	}
	return t, nil
}

// UpdateTag renames a tag. Returns nil if not found.
func (s *TagStore) UpdateTag(ctx context.Context, id uuid.UUID, name, slug string) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tags AS t SET name = $1, slug = $2 WHERE t.id = $3
		RETURNING `+tagColumns, name, slug, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update tag", err)
	}
	return t, nil
}

// DeleteTag removes a tag. Association rows that point at it remain.
func (s *TagStore) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
