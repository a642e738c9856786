package articles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
)

// Handler exposes article endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers article routes.
func (h *Handler) MountRoutes(r chi.Router) {
	guard := h.rbac.Guard(rbac.ResourceArticle, "id", h.service)

	r.Get("/", h.listArticles)
	r.With(guard).Get("/{id}", h.showArticle)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.Get("/mine", h.listMine)
		r.With(h.rbac.RequireRole(rbac.RoleUser)).Post("/", h.createArticle)
		r.With(guard, h.rbac.RequireOwnership(true)).Put("/{id}", h.updateArticle)
		r.With(guard, h.rbac.RequireOwnership(true)).Delete("/{id}", h.deleteArticle)
	})
}

// MountUserRoutes registers the per-author listing under a users router.
func (h *Handler) MountUserRoutes(r chi.Router, users rbac.OwnerLookup) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate, h.rbac.RequireRole(rbac.RoleUser))
		r.With(h.rbac.Guard(rbac.ResourceUser, "id", users)).Get("/{id}/articles", h.listByUser)
	})
}

type createRequest struct {
	Title   string `json:"title" validate:"required,min=8"`
	Content string `json:"content" validate:"required,min=8"`
}

type updateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=8"`
	Content *string `json:"content" validate:"omitempty,min=8"`
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListByUser(r.Context(), principal.ID, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	page, err := h.service.ListByUser(r.Context(), res.ID, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) showArticle(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	article, err := h.service.Get(r.Context(), res.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": article})
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	article, err := h.service.Create(r.Context(), principal.ID, req.Title, req.Content)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "article created", "data": article})
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	res, _ := rbac.ResourceFromContext(r.Context())
	article, err := h.service.Update(r.Context(), res.ID, Changes{Title: req.Title, Content: req.Content})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "article updated", "data": article})
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	if err := h.service.Delete(r.Context(), res.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "article deleted")
}
