// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store, an in-memory session store and
// a recording image store, so no external service is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"inkwell/internal/auth"
	"inkwell/internal/content"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store/memstore"
)

// fakeSessions keeps sessions in a map keyed by the session cookie.
type fakeSessions struct {
	mu   sync.Mutex
	data map[string]*session.Data
	next int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[string]*session.Data)}
}

func (f *fakeSessions) Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := fmt.Sprintf("sid-%d", f.next)
	data.CreatedAt = time.Now()
	f.data[id] = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/"})
	return id, nil
}

func (f *fakeSessions) Get(ctx context.Context, r *http.Request) (*session.Data, error) {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[c.Value]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeSessions) Update(ctx context.Context, r *http.Request, data *session.Data) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return fmt.Errorf("session update: no cookie")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[c.Value] = data
	return nil
}

func (f *fakeSessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, c.Value)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

func (f *fakeSessions) lookup(id string) *session.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[id]
}

// fakeImages records uploads and deletions.
type fakeImages struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: make(map[string][]byte)}
}

const imagesBase = "https://cdn.inkwell.test/"

func (f *fakeImages) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.failPut {
		return fmt.Errorf("s3 upload: connection refused")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeImages) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImages) FileURL(key string) string { return imagesBase + key }

func (f *fakeImages) ExtractKey(rawURL string) (string, bool) {
	if strings.HasPrefix(rawURL, imagesBase) {
		return strings.TrimPrefix(rawURL, imagesBase), true
	}
	return "", false
}

// testEnv bundles the handler groups with their backing stores.
type testEnv struct {
	Store    *memstore.Store
	Reader   *content.Reader
	Editor   *content.Editor
	Sessions *fakeSessions
	Images   *fakeImages

	Public *Public
	Admin  *Admin
	Auth   *Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	reader := content.NewReader(store, store, time.Second)
	t.Cleanup(reader.Wait)
	editor := content.NewEditor(store)
	sessions := newFakeSessions()
	images := newFakeImages()

	return &testEnv{
		Store:    store,
		Reader:   reader,
		Editor:   editor,
		Sessions: sessions,
		Images:   images,
		Public:   NewPublic(reader, editor),
		Admin:    NewAdmin(editor, reader, images),
		Auth:     NewAuth(auth.NewLocal(store), auth.NewTwoFactor(store, ""), sessions),
	}
}

// seedCategory creates a category through the editor.
func (e *testEnv) seedCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	cat, err := e.Editor.CreateCategory(context.Background(), models.CategoryInput{Name: name})
	require.NoError(t, err)
	return cat
}

// seedTag creates a tag through the editor.
func (e *testEnv) seedTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag, err := e.Editor.CreateTag(context.Background(), name)
	require.NoError(t, err)
	return tag
}

// seedArticle saves an article through the editor.
func (e *testEnv) seedArticle(t *testing.T, in models.ArticleInput, tagIDs ...uuid.UUID) *models.Article {
	t.Helper()
	if in.Content == "" {
		in.Content = "# " + in.Title + "\n\nSome words."
	}
	var tags []uuid.UUID
	if len(tagIDs) > 0 {
		tags = tagIDs
	}
	res, err := e.Editor.SaveArticle(context.Background(), nil, in, tags)
	require.NoError(t, err)
	require.NoError(t, res.TagsErr)
	return res.Article
}

// seedUser creates a local user.
func (e *testEnv) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := e.Store.CreateUser(context.Background(), email, password, "Test Editor")
	require.NoError(t, err)
	return u
}

// jsonRequest builds a request with a JSON body (nil for none).
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		switch v := body.(type) {
		case string:
			r = strings.NewReader(v)
		default:
			b, err := json.Marshal(v)
			require.NoError(t, err)
			r = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches session data as LoadSession would.
func withSession(req *http.Request, sess *session.Data) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), sess))
}

// decode reads a JSON response body into a value of type T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// errorBody is the render error envelope.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}
