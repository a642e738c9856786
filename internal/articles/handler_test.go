package articles_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonzTea/cms-crud-restful-api/internal/articles"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	_ "github.com/DonzTea/cms-crud-restful-api/testing"
)

type memRepo struct {
	items  map[int64]articles.Article
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[int64]articles.Article{
		1: {ID: 1, Title: "First article", Content: "Written by u1", UserID: 11},
	}, nextID: 2}
}

func (m *memRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	a, ok := m.items[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return a.UserID, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (articles.Article, error) {
	a, ok := m.items[id]
	if !ok {
		return articles.Article{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memRepo) List(ctx context.Context, page shared.PageRequest) ([]articles.Article, int, error) {
	return m.ListByUser(ctx, 0, page)
}

func (m *memRepo) ListByUser(ctx context.Context, userID int64, page shared.PageRequest) ([]articles.Article, int, error) {
	var out []articles.Article
	for _, a := range m.items {
		if userID == 0 || a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Create(ctx context.Context, userID int64, title, content string) (articles.Article, error) {
	a := articles.Article{ID: m.nextID, Title: title, Content: content, UserID: userID}
	m.items[a.ID] = a
	m.nextID++
	return a, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, c articles.Changes) (articles.Article, error) {
	a := m.items[id]
	if c.Title != nil {
		a.Title = *c.Title
	}
	if c.Content != nil {
		a.Content = *c.Content
	}
	m.items[id] = a
	return a, nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type tokenVerifier map[string]int64

func (v tokenVerifier) Verify(token string) (int64, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errors.New("signature is invalid")
}

type roleMap map[int64][]string

func (m roleMap) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return m[userID], nil
}

// u1 (11) owns article 1, u2 (12) is a plain USER, u3 (13) is an ADMIN and
// u4 (14) holds no role at all.
func newRouter(t *testing.T) (http.Handler, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	mw := rbac.Middleware{
		Resolver: rbac.NewResolver(tokenVerifier{"u1": 11, "u2": 12, "u3": 13, "u4": 14}),
		Roles:    roleMap{11: {"USER"}, 12: {"USER"}, 13: {"USER", "ADMIN"}},
	}
	users := rbac.SelfOwned(func(ctx context.Context, id int64) (bool, error) {
		return id >= 11 && id <= 14, nil
	})
	h := articles.NewHandler(nil, articles.NewService(repo), mw)
	r := chi.NewRouter()
	r.Route("/api/articles", h.MountRoutes)
	r.Route("/api/users", func(r chi.Router) { h.MountUserRoutes(r, users) })
	return r, repo
}

func call(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestPublicReads(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/articles", "", "").Code)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/articles/1", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/articles/999", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/articles/abc", "", "").Code)
}

func TestOwnerDeletesOwnArticle(t *testing.T) {
	h, repo := newRouter(t)
	res := call(t, h, http.MethodDelete, "/api/articles/1", "u1", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, repo.items, int64(1))
}

func TestNonOwnerCannotEdit(t *testing.T) {
	h, repo := newRouter(t)
	res := call(t, h, http.MethodPut, "/api/articles/1", "u2", `{"title":"Hijacked title"}`)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "First article", repo.items[1].Title)
}

func TestAdminEditsAnyArticleWithoutTakingOwnership(t *testing.T) {
	h, repo := newRouter(t)
	res := call(t, h, http.MethodPut, "/api/articles/1", "u3", `{"title":"Moderated title"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Moderated title", repo.items[1].Title)
	assert.Equal(t, int64(11), repo.items[1].UserID)
}

func TestMissingArticleIsNotFoundEvenForNonOwner(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, "/api/articles/999", "u2", "").Code)
}

func TestMutationsRequireCredential(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodDelete, "/api/articles/1", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodDelete, "/api/articles/1", "forged", "").Code)
}

func TestCreateRequiresUserRoleAndValidBody(t *testing.T) {
	h, repo := newRouter(t)
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPost, "/api/articles", "u4", `{"title":"A fine title","content":"Enough content"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/api/articles", "u2", `{"title":"short","content":"Enough content"}`).Code)

	res := call(t, h, http.MethodPost, "/api/articles", "u2", `{"title":"A fine title","content":"Enough content"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var body struct {
		Data articles.Article `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Data.UserID)
	assert.Contains(t, repo.items, body.Data.ID)
}

func TestListMineAndByUser(t *testing.T) {
	h, _ := newRouter(t)
	res := call(t, h, http.MethodGet, "/api/articles/mine", "u1", "")
	require.Equal(t, http.StatusOK, res.Code)
	var page shared.Page[articles.Article]
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)

	res = call(t, h, http.MethodGet, "/api/users/12/articles", "u1", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	assert.Empty(t, page.Data)

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/users/99/articles", "u1", "").Code)
}
