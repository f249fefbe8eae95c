package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/content"
	"inkwell/internal/models"
)

type saveBody struct {
	Article   models.Article `json:"article"`
	TagsError string         `json:"tags_error"`
}

func TestCreateArticle(t *testing.T) {
	env := newTestEnv(t)
	night := env.seedTag(t, "Night")
	essays := env.seedCategory(t, "Essays")

	rec := httptest.NewRecorder()
	env.Admin.CreateArticle(rec, jsonRequest(t, http.MethodPost, "/admin/api/articles", map[string]any{
		"title":       "  Night Walk  ",
		"content":     "Streets after dark.",
		"category_id": essays.ID,
		"published":   true,
		"tag_ids":     []uuid.UUID{night.ID, night.ID},
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[saveBody](t, rec)
	assert.Equal(t, "Night Walk", body.Article.Title)
	assert.Equal(t, "night-walk", body.Article.Slug)
	assert.Equal(t, models.DefaultReadingTime, body.Article.ReadingTime)
	assert.NotNil(t, body.Article.PublishedAt)
	assert.Empty(t, body.TagsError)

	edit, err := env.Editor.ArticleForEdit(context.Background(), body.Article.ID)
	require.NoError(t, err)
	require.NotNil(t, edit)
	assert.Equal(t, []uuid.UUID{night.ID}, edit.TagIDs)
}

func TestCreateArticle_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantField string
	}{
		{"missing title", map[string]any{"content": "x"}, http.StatusUnprocessableEntity, "title"},
		{"missing content", map[string]any{"title": "x"}, http.StatusUnprocessableEntity, "content"},
		{"title too long", map[string]any{"title": strings.Repeat("t", maxTitleLen+1), "content": "x"}, http.StatusUnprocessableEntity, "title"},
		{"negative reading time", map[string]any{"title": "x", "content": "x", "reading_time": -1}, http.StatusUnprocessableEntity, "reading_time"},
		{"unknown category", map[string]any{"title": "x", "content": "x", "category_id": uuid.New()}, http.StatusUnprocessableEntity, "category_id"},
		{"malformed json", `{"title": 3}`, http.StatusBadRequest, ""},
		{"trailing data", `{"title":"x","content":"y"} {}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := httptest.NewRecorder()
			env.Admin.CreateArticle(rec, jsonRequest(t, http.MethodPost, "/admin/api/articles", tt.body))

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[errorBody](t, rec).Field)
			}
			all, err := env.Editor.ListAllArticles(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateArticle_DuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	env.seedArticle(t, models.ArticleInput{Title: "Night Walk"})

	rec := httptest.NewRecorder()
	env.Admin.CreateArticle(rec, jsonRequest(t, http.MethodPost, "/admin/api/articles", map[string]any{
		"title": "Night walk!", "content": "Again.",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateArticle_Tags(t *testing.T) {
	env := newTestEnv(t)
	night := env.seedTag(t, "Night")
	city := env.seedTag(t, "City")
	art := env.seedArticle(t, models.ArticleInput{Title: "Night Walk"}, night.ID, city.ID)

	tests := []struct {
		name string
		tags any
		want []uuid.UUID
	}{
		{"absent tag_ids keeps tags", nil, []uuid.UUID{night.ID, city.ID}},
		{"replaced", []uuid.UUID{city.ID}, []uuid.UUID{city.ID}},
		{"empty clears", []uuid.UUID{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{"title": "Night Walk", "content": "Updated."}
			if tt.tags != nil {
				body["tag_ids"] = tt.tags
			}
			rec := httptest.NewRecorder()
			req := withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/articles/"+art.ID.String(), body), "id", art.ID.String())
			env.Admin.UpdateArticle(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			edit, err := env.Editor.ArticleForEdit(context.Background(), art.ID)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, edit.TagIDs)
		})
	}
}

func TestUpdateArticle_PublishStampsOnce(t *testing.T) {
	env := newTestEnv(t)
	art := env.seedArticle(t, models.ArticleInput{Title: "Draft Piece"})
	require.Nil(t, art.PublishedAt)

	save := func() models.Article {
		rec := httptest.NewRecorder()
		req := withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/articles/"+art.ID.String(), map[string]any{
			"title": "Draft Piece", "content": "Done.", "published": true,
		}), "id", art.ID.String())
		env.Admin.UpdateArticle(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[saveBody](t, rec).Article
	}

	first := save()
	require.NotNil(t, first.PublishedAt)
	second := save()
	require.NotNil(t, second.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt))
}

func TestUpdateArticle_NotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"title": "Ghost", "content": "Boo."}

	rec := httptest.NewRecorder()
	missing := uuid.New().String()
	env.Admin.UpdateArticle(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/articles/"+missing, body), "id", missing))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.UpdateArticle(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/articles/nope", body), "id", "nope"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndDeleteArticle(t *testing.T) {
	env := newTestEnv(t)
	night := env.seedTag(t, "Night")
	art := env.seedArticle(t, models.ArticleInput{Title: "Unpublished"}, night.ID)
	id := art.ID.String()

	rec := httptest.NewRecorder()
	env.Admin.GetArticle(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/admin/api/articles/"+id, nil), "id", id))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[content.ArticleForEdit](t, rec)
	assert.Equal(t, art.ID, got.Article.ID)
	assert.Equal(t, []uuid.UUID{night.ID}, got.TagIDs)

	rec = httptest.NewRecorder()
	env.Admin.ListArticles(rec, httptest.NewRequest(http.MethodGet, "/admin/api/articles", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[articlesBody](t, rec).Articles, 1, "drafts are listed in the dashboard")

	rec = httptest.NewRecorder()
	env.Admin.DeleteArticle(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/admin/api/articles/"+id, nil), "id", id))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.GetArticle(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/admin/api/articles/"+id, nil), "id", id))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Cover uploads ---

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func coverRequest(t *testing.T, id string, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/articles/"+id+"/cover", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withURLParams(req, "id", id)
}

func TestUploadCover(t *testing.T) {
	env := newTestEnv(t)
	art := env.seedArticle(t, models.ArticleInput{Title: "Harbour"})
	id := art.ID.String()

	rec := httptest.NewRecorder()
	env.Admin.UploadCover(rec, coverRequest(t, id, "cover.png", pngBytes))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[map[string]string](t, rec)["cover_image_url"]
	require.True(t, strings.HasPrefix(first, imagesBase+"covers/"+id+"/"), first)
	assert.True(t, strings.HasSuffix(first, ".png"))

	firstKey := strings.TrimPrefix(first, imagesBase)
	assert.Equal(t, pngBytes, env.Images.objects[firstKey])

	edit, err := env.Editor.ArticleForEdit(context.Background(), art.ID)
	require.NoError(t, err)
	require.NotNil(t, edit.Article.CoverImageURL)
	assert.Equal(t, first, *edit.Article.CoverImageURL)

	// Replacing the cover removes the previous object.
	rec = httptest.NewRecorder()
	env.Admin.UploadCover(rec, coverRequest(t, id, "cover.png", pngBytes))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{firstKey}, env.Images.deleted)
	assert.NotContains(t, env.Images.objects, firstKey)
}

func TestUploadCover_Rejected(t *testing.T) {
	env := newTestEnv(t)
	art := env.seedArticle(t, models.ArticleInput{Title: "Harbour"})
	id := art.ID.String()

	t.Run("not an image", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.Admin.UploadCover(rec, coverRequest(t, id, "notes.txt", []byte("just some text")))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Empty(t, env.Images.objects)
	})

	t.Run("unknown article", func(t *testing.T) {
		missing := uuid.New().String()
		rec := httptest.NewRecorder()
		env.Admin.UploadCover(rec, coverRequest(t, missing, "cover.png", pngBytes))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/admin/api/articles/"+id+"/cover", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		env.Admin.UploadCover(rec, withURLParams(req, "id", id))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		env.Images.failPut = true
		defer func() { env.Images.failPut = false }()
		rec := httptest.NewRecorder()
		env.Admin.UploadCover(rec, coverRequest(t, id, "cover.png", pngBytes))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestUploadCover_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdmin(env.Editor, env.Reader, nil)
	art := env.seedArticle(t, models.ArticleInput{Title: "Harbour"})

	rec := httptest.NewRecorder()
	admin.UploadCover(rec, coverRequest(t, art.ID.String(), "cover.png", pngBytes))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- Categories and tags ---

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Admin.CreateCategory(rec, jsonRequest(t, http.MethodPost, "/admin/api/categories", map[string]any{
		"name": "Short Fiction", "display_order": 2,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[models.Category](t, rec)
	assert.Equal(t, "short-fiction", cat.Slug)
	id := cat.ID.String()

	rec = httptest.NewRecorder()
	env.Admin.CreateCategory(rec, jsonRequest(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": "Short Fiction"}))
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate slug")

	rec = httptest.NewRecorder()
	env.Admin.CreateCategory(rec, jsonRequest(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": " "}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.UpdateCategory(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/categories/"+id, map[string]any{
		"name": "Fiction", "slug": "Fiction Pieces",
	}), "id", id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "fiction-pieces", decode[models.Category](t, rec).Slug)

	rec = httptest.NewRecorder()
	env.Admin.ListCategories(rec, httptest.NewRequest(http.MethodGet, "/admin/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[articlesBody](t, rec).Categories, 1)

	rec = httptest.NewRecorder()
	env.Admin.DeleteCategory(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/admin/api/categories/"+id, nil), "id", id))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.UpdateCategory(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/categories/"+id, map[string]any{"name": "Gone"}), "id", id))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Admin.CreateTag(rec, jsonRequest(t, http.MethodPost, "/admin/api/tags", map[string]any{"name": "Night Life"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decode[models.Tag](t, rec)
	assert.Equal(t, "night-life", tag.Slug)
	id := tag.ID.String()

	rec = httptest.NewRecorder()
	env.Admin.CreateTag(rec, jsonRequest(t, http.MethodPost, "/admin/api/tags", map[string]any{"name": strings.Repeat("n", maxNameLen+1)}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.UpdateTag(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/tags/"+id, map[string]any{"name": "Nightfall"}), "id", id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nightfall", decode[models.Tag](t, rec).Slug)

	rec = httptest.NewRecorder()
	env.Admin.ListTags(rec, httptest.NewRequest(http.MethodGet, "/admin/api/tags", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[articlesBody](t, rec).Tags, 1)

	rec = httptest.NewRecorder()
	env.Admin.DeleteTag(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/admin/api/tags/"+id, nil), "id", id))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	env.Admin.UpdateTag(rec, withURLParams(jsonRequest(t, http.MethodPut, "/admin/api/tags/"+id, map[string]any{"name": "Back"}), "id", id))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
