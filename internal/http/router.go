package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// own registry so tests can build routers independently
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("taskhub"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// dashboard cache is a no-op when REDIS_ADDR is unset
	dash := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.DashboardCacheTTL(),
	}, prom)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	projectsRepo := postgres.NewProjectsRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)
	categoriesRepo := postgres.NewCategoriesRepo(pool, prom)
	dashboardRepo := postgres.NewDashboardRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	projectsHandler := handlers.NewProjectsHandler(projectsRepo, dash)
	tasksHandler := handlers.NewTasksHandler(tasksRepo, dash)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardRepo, dash)

	// session endpoints
	r.POST("/auth/signup", authHandler.SignUp)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.POST("/auth/logout", authHandler.Logout)

	// the one read that trusts an explicit userId parameter
	r.GET("/projects", projectsHandler.ListProjects)

	// everything else runs behind the authorization gate
	authed := r.Group("/", authMW.RequireAuth())

	authed.POST("/projects", projectsHandler.CreateProject)
	authed.PUT("/projects", projectsHandler.UpdateProject)
	authed.DELETE("/projects", projectsHandler.DeleteProject)

	authed.POST("/tasks", tasksHandler.CreateTask)
	authed.GET("/tasks", tasksHandler.ListTasks)
	authed.PUT("/tasks", tasksHandler.UpdateTask)
	authed.DELETE("/tasks", tasksHandler.DeleteTask)

	authed.GET("/categories", categoriesHandler.ListCategories)

	authed.GET("/dashboard", dashboardHandler.Dashboard)
	authed.GET("/dashboard/task-stats", dashboardHandler.TaskStats)
	authed.GET("/dashboard/progress", dashboardHandler.Progress)
	authed.GET("/dashboard/upcoming-tasks", dashboardHandler.UpcomingTasks)
	// route name kept for compatibility with existing clients
	authed.GET("/dashboard/calender-tasks", dashboardHandler.CalendarTasks)

	return r
}
