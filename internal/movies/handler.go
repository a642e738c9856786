package movies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
)

// Handler exposes the movie and actor catalog.
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

// MountMovieRoutes registers movie routes.
func (h *Handler) MountMovieRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.Get("/", h.listMovies)
		r.Post("/", h.createMovie)
	})
}

// MountActorRoutes registers actor routes.
func (h *Handler) MountActorRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticate)
		r.Get("/", h.listActors)
		r.Post("/", h.createActor)
	})
}

type movieRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Actors      []int64 `json:"actors" validate:"omitempty,dive,gt=0"`
}

type actorRequest struct {
	Name string `json:"name" validate:"required"`
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

func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMovies(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) createMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if !h.decode(w, r, &req) {
		return
	}
	movie, err := h.service.CreateMovie(r.Context(), NewMovie{
		Title:       req.Title,
		Description: req.Description,
		ActorIDs:    req.Actors,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "movie created", "data": movie})
}

func (h *Handler) listActors(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActors(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) createActor(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor, err := h.service.CreateActor(r.Context(), req.Name)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "actor created", "data": actor})
}
