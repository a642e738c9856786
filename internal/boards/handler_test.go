package boards_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/DonzTea/cms-crud-restful-api/internal/boards"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	_ "github.com/DonzTea/cms-crud-restful-api/testing"
)

type tokenVerifier map[string]int64

func (v tokenVerifier) Verify(token string) (int64, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errors.New("token is expired")
}

type roleMap map[int64][]string

func (m roleMap) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return m[userID], nil
}

func TestBoards(t *testing.T) {
	mw := rbac.Middleware{
		Resolver: rbac.NewResolver(tokenVerifier{"user": 1, "pm": 2, "admin": 3}),
		Roles:    roleMap{1: {"USER"}, 2: {"USER", "PM"}, 3: {"ADMIN"}},
	}
	r := chi.NewRouter()
	r.Route("/api/test", boards.NewHandler(mw).MountRoutes)

	cases := []struct {
		path   string
		token  string
		status int
	}{
		{"/api/test/user", "", http.StatusUnauthorized},
		{"/api/test/user", "user", http.StatusOK},
		{"/api/test/pm", "user", http.StatusForbidden},
		{"/api/test/pm", "pm", http.StatusOK},
		{"/api/test/pm", "admin", http.StatusOK},
		{"/api/test/admin", "pm", http.StatusForbidden},
		{"/api/test/admin", "admin", http.StatusOK},
		{"/api/test/admin", "stale", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("x-access-token", tc.token)
		}
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		assert.Equal(t, tc.status, res.Code, "%s as %q", tc.path, tc.token)
	}
}
