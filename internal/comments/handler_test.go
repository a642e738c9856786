package comments_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DonzTea/cms-crud-restful-api/internal/comments"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	_ "github.com/DonzTea/cms-crud-restful-api/testing"
)

type memRepo struct {
	items  map[int64]comments.Comment
	nextID int64
}

func (m *memRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	c, ok := m.items[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return c.UserID, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (comments.Comment, error) {
	c, ok := m.items[id]
	if !ok {
		return comments.Comment{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memRepo) List(ctx context.Context, f comments.Filter, page shared.PageRequest) ([]comments.Comment, int, error) {
	var out []comments.Comment
	for _, c := range m.items {
		if (f.ArticleID == 0 || c.ArticleID == f.ArticleID) && (f.UserID == 0 || c.UserID == f.UserID) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Create(ctx context.Context, articleID, userID int64, content string) (comments.Comment, error) {
	c := comments.Comment{ID: m.nextID, ArticleID: articleID, UserID: userID, Content: content}
	m.items[c.ID] = c
	m.nextID++
	return c, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, content string) (comments.Comment, error) {
	c := m.items[id]
	c.Content = content
	m.items[id] = c
	return c, nil
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
	return 0, errors.New("token is malformed")
}

type roleMap map[int64][]string

func (m roleMap) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return m[userID], nil
}

// Comment 1 on article 1 is written by u1 (11); u2 (12) is a USER, u3 (13) an ADMIN.
func newRouter(t *testing.T) (http.Handler, *memRepo) {
	t.Helper()
	repo := &memRepo{items: map[int64]comments.Comment{
		1: {ID: 1, ArticleID: 1, UserID: 11, Content: "first!"},
	}, nextID: 2}
	mw := rbac.Middleware{
		Resolver: rbac.NewResolver(tokenVerifier{"u1": 11, "u2": 12, "u3": 13}),
		Roles:    roleMap{11: {"USER"}, 12: {"USER"}, 13: {"ADMIN"}},
	}
	articles := rbac.OwnerLookupFunc(func(ctx context.Context, id int64) (int64, error) {
		if id != 1 {
			return 0, shared.ErrNotFound
		}
		return 11, nil
	})
	users := rbac.SelfOwned(func(ctx context.Context, id int64) (bool, error) {
		return id >= 11 && id <= 13, nil
	})
	h := comments.NewHandler(nil, comments.NewService(repo), mw)
	r := chi.NewRouter()
	r.Route("/api/articles", func(r chi.Router) { h.MountArticleRoutes(r, articles) })
	r.Route("/api/comments", h.MountRoutes)
	r.Route("/api/users", func(r chi.Router) { h.MountUserRoutes(r, users) })
	return r, repo
}

func call(t *testing.T, h http.Handler, method, path, token, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("x-access-token", token)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res.Code
}

func TestThreadIsPublicButGuarded(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/articles/1/comments", "", ""))
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/articles/2/comments", "", ""))
}

func TestCreateComment(t *testing.T) {
	h, repo := newRouter(t)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, "/api/articles/1/comments", "", `{"content":"hi"}`))
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodPost, "/api/articles/2/comments", "u2", `{"content":"hi"}`))
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPost, "/api/articles/1/comments", "u2", `{}`))
	require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/api/articles/1/comments", "u2", `{"content":"hi"}`))
	assert.Equal(t, int64(12), repo.items[2].UserID)
}

func TestEditAndDeleteAreOwnerOrAdmin(t *testing.T) {
	h, repo := newRouter(t)
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPut, "/api/comments/1", "u2", `{"content":"edited"}`))
	assert.Equal(t, "first!", repo.items[1].Content)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodPut, "/api/comments/1", "u1", `{"content":"edited"}`))
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodDelete, "/api/comments/1", "u2", ""))
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, "/api/comments/9", "u2", ""))
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodDelete, "/api/comments/1", "u3", ""))
	assert.Empty(t, repo.items)
}

func TestUserCommentHistoryIsSelfOrAdmin(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/users/11/comments", "u1", ""))
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodGet, "/api/users/11/comments", "u2", ""))
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/api/users/11/comments", "u3", ""))
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/api/users/99/comments", "u3", ""))
}
