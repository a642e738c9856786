package comments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
)

// Handler exposes comment endpoints.
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

// MountRoutes registers routes addressing a single comment.
func (h *Handler) MountRoutes(r chi.Router) {
	guard := h.rbac.Guard(rbac.ResourceComment, "id", h.service)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.With(guard, h.rbac.RequireOwnership(true)).Put("/{id}", h.updateComment)
		r.With(guard, h.rbac.RequireOwnership(true)).Delete("/{id}", h.deleteComment)
	})
}

// MountArticleRoutes registers the comment thread under an articles router.
func (h *Handler) MountArticleRoutes(r chi.Router, articles rbac.OwnerLookup) {
	guard := h.rbac.Guard(rbac.ResourceArticle, "id", articles)
	r.With(guard).Get("/{id}/comments", h.listForArticle)
	r.With(h.rbac.Authenticate, guard).Post("/{id}/comments", h.createComment)
}

// MountUserRoutes registers a user's comment history under a users router.
// Only the user itself or an ADMIN may read it.
func (h *Handler) MountUserRoutes(r chi.Router, users rbac.OwnerLookup) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate, h.rbac.RequireRole(rbac.RoleUser))
		r.With(h.rbac.Guard(rbac.ResourceUser, "id", users), h.rbac.RequireOwnership(false)).Get("/{id}/comments", h.listForUser)
	})
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) listForArticle(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	page, err := h.service.List(r.Context(), Filter{ArticleID: res.ID}, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	page, err := h.service.List(r.Context(), Filter{UserID: res.ID}, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (commentRequest, bool) {
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return req, false
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return req, false
	}
	return req, true
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	article, _ := rbac.ResourceFromContext(r.Context())
	principal, _ := rbac.PrincipalFromContext(r.Context())
	comment, err := h.service.Create(r.Context(), article.ID, principal.ID, req.Content)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "comment created", "data": comment})
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, _ := rbac.ResourceFromContext(r.Context())
	comment, err := h.service.Update(r.Context(), res.ID, req.Content)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "comment updated", "data": comment})
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	if err := h.service.Delete(r.Context(), res.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "comment deleted")
}
