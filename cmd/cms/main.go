package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/DonzTea/cms-crud-restful-api/internal/admin"
	"github.com/DonzTea/cms-crud-restful-api/internal/app"
	"github.com/DonzTea/cms-crud-restful-api/internal/articles"
	"github.com/DonzTea/cms-crud-restful-api/internal/auth"
	"github.com/DonzTea/cms-crud-restful-api/internal/boards"
	"github.com/DonzTea/cms-crud-restful-api/internal/comments"
	"github.com/DonzTea/cms-crud-restful-api/internal/movies"
	"github.com/DonzTea/cms-crud-restful-api/internal/observability"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/cache"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/roles"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
	"github.com/DonzTea/cms-crud-restful-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg.PGDSN, os.Args[2:], logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var cooldown auth.Throttle
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reset cooldown disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		cooldown = cache.NewCooldown(redisClient, "cms:reset:cooldown:", cfg.ResetCooldown)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("init tokens", slog.Any("error", err))
		os.Exit(1)
	}

	rolesRepo := roles.NewRepository(dbpool)
	rbacMiddleware := rbac.Middleware{
		Resolver: rbac.NewResolver(tokens),
		Roles:    rolesRepo,
		Logger:   logger,
		Recorder: metrics,
	}

	usersService := users.NewService(users.NewRepository(dbpool), rolesRepo, cfg.BcryptCost)
	articlesService := articles.NewService(articles.NewRepository(dbpool))
	commentsService := comments.NewService(comments.NewRepository(dbpool))
	moviesService := movies.NewService(movies.NewRepository(dbpool))

	authService := auth.NewService(auth.NewRepository(dbpool), usersService, rolesRepo, tokens, auth.Options{
		Mail:       jobsClient,
		Cooldown:   cooldown,
		ResetTTL:   cfg.ResetTokenTTL,
		BaseURL:    cfg.AppBaseURL,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     auth.NewHandler(logger, authService),
		UsersHandler:    users.NewHandler(logger, usersService, rbacMiddleware),
		ArticlesHandler: articles.NewHandler(logger, articlesService, rbacMiddleware),
		CommentsHandler: comments.NewHandler(logger, commentsService, rbacMiddleware),
		AdminHandler: admin.NewHandler(logger, admin.Services{
			Users:    usersService,
			Articles: articlesService,
			Comments: commentsService,
			Audit:    shared.NewAuditLogger(dbpool),
		}, rbacMiddleware),
		BoardsHandler: boards.NewHandler(rbacMiddleware),
		MoviesHandler: movies.NewHandler(logger, moviesService, rbacMiddleware),
		RolesHandler:  roles.NewHandler(logger, roles.NewService(rolesRepo), rbacMiddleware),
		JobHandler:    jobs.NewHandler(inspector, logger),
		UserOwners:    usersService.OwnerLookup(),
		ArticleOwners: articlesService,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runMigrate handles `cms migrate up|down|version`.
func runMigrate(dsn string, args []string, logger *slog.Logger) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}
	m, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("migrator close", slog.Any("error", err))
		}
	}()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = m.Version()
		if err == nil {
			logger.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		}
		return err
	default:
		return fmt.Errorf("unknown migrate command %q", cmd)
	}
	if err == nil {
		logger.Info("migrations applied", slog.String("direction", cmd))
	}
	return err
}
