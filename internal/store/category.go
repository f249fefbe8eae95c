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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.display_order, c.created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.DisplayOrder, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// SelectCategories runs q against the categories table.
func (s *CategoryStore) SelectCategories(ctx context.Context, q query.Query) ([]models.Category, error) {
	if err := checkQuery(q, query.Categories); err != nil {
		return nil, err
	}
	b := &sqlBuilder{}
	stmt := "SELECT " + categoryColumns + " FROM categories c" + b.where(q, "c") + orderBy(q, "c") + limitClause(q)

	rows, err := s.db.QueryContext(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// InsertCategory inserts a new category and returns it.
func (s *CategoryStore) InsertCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories AS c (name, slug, description, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		in.Name, in.Slug, in.Description, in.DisplayOrder,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, wrapErr("create category", err)
	}
	return c, nil
}

// UpdateCategory overwrites a category. Returns nil if not found.
func (s *CategoryStore) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryInput) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories AS c SET
			name = $1, slug = $2, description = $3, display_order = $4
		WHERE c.id = $5
		RETURNING `+categoryColumns,
		in.Name, in.Slug, in.Description, in.DisplayOrder, id,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update category", err)
	}
	return c, nil
}

// DeleteCategory removes a category by ID. Articles keep the dangling
// category_id.
func (s *CategoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
