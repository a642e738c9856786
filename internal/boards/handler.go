// Package boards serves the role test boards used to check a token's grants.
package boards

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
)

// Handler serves the boards.
type Handler struct {
	rbac rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(rbac rbac.Middleware) *Handler {
	return &Handler{rbac: rbac}
}

// MountRoutes registers board routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.Get("/user", board("User Content."))
		r.With(h.rbac.RequireRole(rbac.RolePM)).Get("/pm", board("Project Manager Board."))
		r.With(h.rbac.RequireRole(rbac.RoleAdmin)).Get("/admin", board("Admin Board."))
	})
}

func board(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusOK, message)
	}
}
