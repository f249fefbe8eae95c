// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/content"
	"inkwell/internal/models"
)

func TestFlatten(t *testing.T) {
	t1 := models.Tag{ID: uuid.New(), Slug: "t1"}
	t2 := models.Tag{ID: uuid.New(), Slug: "t2"}

	view := content.Flatten(models.ArticleRow{
		ArticleTags: []models.ArticleTagRow{{Tag: t1}, {Tag: t2}},
	})
	assert.Equal(t, []models.Tag{t1, t2}, view.Tags)

	empty := content.Flatten(models.ArticleRow{})
	require.NotNil(t, empty.Tags)
	assert.Empty(t, empty.Tags)
}

func TestFilterByTag(t *testing.T) {
	a := models.Tag{Slug: "a"}
	b := models.Tag{Slug: "b"}
	view := func(slug string, tags ...models.Tag) models.ArticleView {
		v := models.ArticleView{Tags: tags}
		v.Slug = slug
		return v
	}
	views := []models.ArticleView{view("1", a), view("2", a, b), view("3", b)}

	assert.Equal(t, []string{"1", "2"}, slugs(content.FilterByTag(views, "a")))
	assert.Equal(t, []string{"2", "3"}, slugs(content.FilterByTag(views, "b")))
	assert.Equal(t, []string{"1", "2", "3"}, slugs(content.FilterByTag(views, "")))
	assert.Empty(t, content.FilterByTag(views, "c"))
}

func TestFilterBySearch(t *testing.T) {
	excerpt := "Notes on Consensus"
	v1 := models.ArticleView{}
	v1.Slug, v1.Title = "raft", "Understanding Raft"
	v2 := models.ArticleView{}
	v2.Slug, v2.Title, v2.Excerpt = "paxos", "Paxos", &excerpt
	views := []models.ArticleView{v1, v2}

	assert.Equal(t, []string{"raft"}, slugs(content.FilterBySearch(views, "RAFT")))
	assert.Equal(t, []string{"paxos"}, slugs(content.FilterBySearch(views, "consensus")))
	assert.Equal(t, []string{"raft", "paxos"}, slugs(content.FilterBySearch(views, "  ")))
	assert.Empty(t, content.FilterBySearch(views, "zab"))
}

func TestReadingProgress(t *testing.T) {
	tests := []struct {
		name                     string
		offset, viewport, height float64
		want                     float64
	}{
		{"no scroll room", 0, 800, 800, 100},
		{"no scroll room with offset", 300, 800, 800, 100},
		{"content shorter than viewport", 0, 800, 400, 100},
		{"halfway", 500, 800, 1800, 50},
		{"top", 0, 800, 1800, 0},
		{"bottom", 1000, 800, 1800, 100},
		{"overscroll", 1400, 800, 1800, 100},
		{"negative offset", -50, 800, 1800, 0},
		{"nan offset", math.NaN(), 800, 1800, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, content.ReadingProgress(tt.offset, tt.viewport, tt.height))
		})
	}
}

func TestListState(t *testing.T) {
	var s content.ListState
	first := []models.ArticleView{{}}
	second := []models.ArticleView{{}, {}}

	slow := s.Begin()
	fast := s.Begin()

	assert.True(t, s.Resolve(fast, second, nil))
	assert.False(t, s.Resolve(slow, first, nil), "a stale result is discarded")
	assert.Len(t, s.Articles(), 2)

	failing := s.Begin()
	assert.True(t, s.Resolve(failing, nil, errors.New("boom")))
	assert.True(t, s.LoadFailed())
	assert.Len(t, s.Articles(), 2, "a failed load keeps the previous list")

	assert.False(t, s.Resolve(failing, first, nil), "a ticket applies once")

	next := s.Begin()
	assert.True(t, s.Resolve(next, first, nil))
	assert.False(t, s.LoadFailed())
	assert.Len(t, s.Articles(), 1)
}
