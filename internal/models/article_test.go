package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestArticleOptionalFieldsSerializeAsNull verifies optional fields are
// present as null instead of being dropped from the JSON shape.
func TestArticleOptionalFieldsSerializeAsNull(t *testing.T) {
	b, err := json.Marshal(ArticleView{Article: Article{Title: "Night Walk"}, Tags: []Tag{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)

	for _, field := range []string{
		`"subtitle":null`, `"excerpt":null`, `"author_notes":null`, `"category_id":null`,
		`"published_at":null`, `"cover_image_url":null`, `"meta_title":null`,
		`"meta_description":null`, `"category":null`, `"tags":[]`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected %s in %s", field, out)
		}
	}
}

// TestArticleRowDecodesJoinedShape verifies the nested association rows
// returned by a joined select decode into ArticleRow.
func TestArticleRowDecodesJoinedShape(t *testing.T) {
	raw := `{
		"id": "6f1f9f0e-3a53-4d55-8f5c-2a5e0d4f7a10",
		"title": "City Lights",
		"slug": "city-lights",
		"content": "...",
		"published": true,
		"reading_time": 4,
		"view_count": 9,
		"category": {"id": "0b8d8a64-6f59-4c65-9d2c-2b5f0b8c1e11", "name": "Essays", "slug": "essays", "display_order": 1},
		"article_tags": [{"tag": {"id": "9a4b6d7c-1e2f-4a3b-8c5d-6e7f8a9b0c1d", "name": "Night", "slug": "night"}}]
	}`

	var row ArticleRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row.Title != "City Lights" || row.ViewCount != 9 {
		t.Errorf("article fields not decoded: %+v", row.Article)
	}
	if row.Category == nil || row.Category.Slug != "essays" {
		t.Errorf("category not decoded: %+v", row.Category)
	}
	if len(row.ArticleTags) != 1 || row.ArticleTags[0].Tag.Slug != "night" {
		t.Errorf("article tags not decoded: %+v", row.ArticleTags)
	}
}

func TestHasTagSlug(t *testing.T) {
	tags := []Tag{{Slug: "night"}, {Slug: "city"}}
	if !HasTagSlug(tags, "city") {
		t.Error("expected city to be found")
	}
	if HasTagSlug(tags, "sea") {
		t.Error("did not expect sea to be found")
	}
	if HasTagSlug(nil, "city") {
		t.Error("nil tag list must not match")
	}
}
