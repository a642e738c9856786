package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/DonzTea/cms-crud-restful-api/internal/admin"
	"github.com/DonzTea/cms-crud-restful-api/internal/articles"
	"github.com/DonzTea/cms-crud-restful-api/internal/auth"
	"github.com/DonzTea/cms-crud-restful-api/internal/boards"
	"github.com/DonzTea/cms-crud-restful-api/internal/comments"
	"github.com/DonzTea/cms-crud-restful-api/internal/movies"
	"github.com/DonzTea/cms-crud-restful-api/internal/observability"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/roles"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
	"github.com/DonzTea/cms-crud-restful-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	ArticlesHandler *articles.Handler
	CommentsHandler *comments.Handler
	AdminHandler    *admin.Handler
	BoardsHandler   *boards.Handler
	MoviesHandler   *movies.Handler
	RolesHandler    *roles.Handler
	JobHandler      *jobs.Handler

	// UserOwners and ArticleOwners back the existence guards of the
	// nested /users/{id}/... and /articles/{id}/comments routes.
	UserOwners    rbac.OwnerLookup
	ArticleOwners rbac.OwnerLookup

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.ArticlesHandler != nil || params.CommentsHandler != nil {
			r.Route("/articles", func(r chi.Router) {
				if params.ArticlesHandler != nil {
					params.ArticlesHandler.MountRoutes(r)
				}
				if params.CommentsHandler != nil && params.ArticleOwners != nil {
					params.CommentsHandler.MountArticleRoutes(r, params.ArticleOwners)
				}
			})
		}
		if params.CommentsHandler != nil {
			r.Route("/comments", params.CommentsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", func(r chi.Router) {
				params.UsersHandler.MountRoutes(r)
				if params.UserOwners == nil {
					return
				}
				if params.ArticlesHandler != nil {
					params.ArticlesHandler.MountUserRoutes(r, params.UserOwners)
				}
				if params.CommentsHandler != nil {
					params.CommentsHandler.MountUserRoutes(r, params.UserOwners)
				}
			})
		}
		if params.AdminHandler != nil {
			r.Route("/admin", params.AdminHandler.MountRoutes)
		}
		if params.BoardsHandler != nil {
			r.Route("/test", params.BoardsHandler.MountRoutes)
		}
		if params.MoviesHandler != nil {
			r.Route("/movies", params.MoviesHandler.MountMovieRoutes)
			r.Route("/actors", params.MoviesHandler.MountActorRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
