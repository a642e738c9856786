package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/DonzTea/cms-crud-restful-api/internal/articles"
	"github.com/DonzTea/cms-crud-restful-api/internal/comments"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
)

// AuditRecorder persists admin actions.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Handler serves the administration API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	users     *users.Service
	articles  *articles.Service
	comments  *comments.Service
	audit     AuditRecorder
	rbac      rbac.Middleware
	validator *validator.Validate
}

// Services groups the module services the admin API manages.
type Services struct {
	Users    *users.Service
	Articles *articles.Service
	Comments *comments.Service
	Audit    AuditRecorder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, svc Services, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   NewService(svc.Users, svc.Articles),
		users:     svc.Users,
		articles:  svc.Articles,
		comments:  svc.Comments,
		audit:     svc.Audit,
		rbac:      rbac,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers admin routes. Every route requires ADMIN.
func (h *Handler) MountRoutes(r chi.Router) {
	userGuard := h.rbac.Guard(rbac.ResourceUser, "id", h.users.OwnerLookup())
	articleGuard := h.rbac.Guard(rbac.ResourceArticle, "id", h.articles)
	commentGuard := h.rbac.Guard(rbac.ResourceComment, "id", h.comments)
	protected := h.rbac.RequireOwnership(true)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate, h.rbac.RequireRole(rbac.RoleAdmin))

		r.Get("/users", h.listUsers)
		r.Post("/users", h.createUser)
		r.With(userGuard).Get("/users/{id}", h.showUser)
		r.With(userGuard, protected).Put("/users/{id}", h.updateUser)
		r.With(userGuard, protected).Delete("/users/{id}", h.deleteUser)

		r.Get("/articles", h.listArticles)
		r.With(articleGuard).Get("/articles/{id}", h.showArticle)
		r.With(articleGuard).Delete("/articles/{id}", h.deleteArticle)

		r.Get("/comments", h.listComments)
		r.With(commentGuard).Delete("/comments/{id}", h.deleteComment)
	})
}

type createUserRequest struct {
	Name     string   `json:"name" validate:"required,min=4,max=30"`
	Username string   `json:"username" validate:"required,alphanum,min=4,max=30"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"omitempty,dive,required"`
}

type updateUserRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=4,max=30"`
	Username *string  `json:"username" validate:"omitempty,alphanum,min=4,max=30"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Password *string  `json:"password" validate:"omitempty,min=8"`
	Roles    []string `json:"roles" validate:"omitempty,dive,required"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, h.logger, err)
		return false
	}
	if err := httpx.Validate(h.validator, target); err != nil {
		httpx.RespondError(w, h.logger, err)
		return false
	}
	return true
}

// record appends an audit entry for a completed write. Failures are logged only.
func (h *Handler) record(r *http.Request, action, entity string, id int64, meta map[string]any) {
	if h.audit == nil {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Meta:     meta,
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit record", slog.String("action", action), slog.Int64("entity_id", id), slog.Any("error", err))
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.Register(r.Context(), users.Account{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.record(r, "user.create", "user", user.ID, map[string]any{"username": user.Username, "roles": req.Roles})
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "user created", "data": user})
}

func (h *Handler) showUser(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	detail, err := h.service.UserDetail(r.Context(), res.ID, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, _ := rbac.ResourceFromContext(r.Context())
	user, err := h.users.Update(r.Context(), res.ID, users.Changes{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.record(r, "user.update", "user", user.ID, map[string]any{"roles": req.Roles, "password_changed": req.Password != nil})
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "user updated", "data": user})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	if err := h.users.Delete(r.Context(), res.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.record(r, "user.delete", "user", res.ID, nil)
	httpx.Message(w, http.StatusOK, "user deleted")
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	page, err := h.articles.List(r.Context(), httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) showArticle(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	article, err := h.articles.Get(r.Context(), res.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": article})
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	if err := h.articles.Delete(r.Context(), res.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.record(r, "article.delete", "article", res.ID, map[string]any{"owner_id": res.OwnerID})
	httpx.Message(w, http.StatusOK, "article deleted")
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	page, err := h.comments.List(r.Context(), comments.Filter{}, httpx.PageFromQuery(r))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResourceFromContext(r.Context())
	if err := h.comments.Delete(r.Context(), res.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.record(r, "comment.delete", "comment", res.ID, map[string]any{"owner_id": res.OwnerID})
	httpx.Message(w, http.StatusOK, "comment deleted")
}
