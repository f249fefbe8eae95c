package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderReturnsCopies(t *testing.T) {
	base := From(Articles).Eq("published", true)
	featured := base.Eq("featured", true).Limit(6)
	related := base.Neq("id", "a1").OrderBy("published_at", Desc)

	assert.Len(t, base.Filters, 1, "refinements must not leak into the base query")
	assert.Zero(t, base.Max)
	assert.Len(t, featured.Filters, 2)
	assert.Equal(t, 6, featured.Max)
	assert.Len(t, related.Filters, 2)
	assert.Equal(t, OpNeq, related.Filters[1].Op)
	assert.Empty(t, featured.Orders)
}

func TestJoinDeduplicates(t *testing.T) {
	q := From(Articles).Join(JoinCategory).Join(JoinCategory, JoinTags)

	assert.Equal(t, []Join{JoinCategory, JoinTags}, q.Joins)
	assert.True(t, q.Has(JoinTags))
	assert.False(t, From(Articles).Has(JoinTags))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr string
	}{
		{name: "valid featured", q: From(Articles).Eq("published", true).Eq("featured", true).OrderBy("published_at", Desc).Limit(6).Join(JoinCategory)},
		{name: "valid categories", q: From(Categories).Eq("slug", "essays")},
		{name: "unknown table", q: From("users"), wantErr: "unknown table"},
		{name: "unknown column", q: From(Articles).Eq("published; drop table", true), wantErr: "unknown column"},
		{name: "unknown order column", q: From(Tags).OrderBy("weight", Asc), wantErr: "unknown order column"},
		{name: "bad direction", q: From(Tags).OrderBy("name", Direction("sideways")), wantErr: "unsupported direction"},
		{name: "bad operator", q: Query{Table: Tags, Filters: []Filter{{Column: "name", Op: "like"}}}, wantErr: "unsupported operator"},
		{name: "join on tags", q: From(Tags).Join(JoinCategory), wantErr: "joins are only supported"},
		{name: "negative limit", q: From(Tags).Limit(-1), wantErr: "negative limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
