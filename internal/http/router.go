package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
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

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for this API

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("taskhub"))

	prom := observability.NewProm(prometheus.DefaultRegisterer)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

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
	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "API is running...")
	})

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	usersHandler := handlers.NewUsersHandler(usersRepo, jwtManager)
	tasksHandler := handlers.NewTasksHandler(tasksRepo)

	publicLimiter := middlewares.NewRateLimiter(20, time.Minute)
	apiLimiter := middlewares.NewRateLimiter(120, time.Minute)

	users := r.Group("/api/users")
	{
		users.POST("", publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Register)
		users.POST("/login", publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Login)

		protected := users.Group("")
		protected.Use(authMw.RequireAuth(), apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
		protected.GET("", usersHandler.GetProfile)
		protected.PUT("", usersHandler.UpdateProfile)
	}

	tasks := r.Group("/api/tasks")
	tasks.Use(authMw.RequireAuth(), apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		tasks.POST("", tasksHandler.CreateTask)
		tasks.GET("", tasksHandler.ListTasks)
		tasks.GET("/stats", tasksHandler.GetUserStats)
		tasks.GET("/date", tasksHandler.ListTasksByDate)
		tasks.GET("/:id", tasksHandler.GetTaskById)
		tasks.PUT("/:id", tasksHandler.UpdateTask)
		tasks.DELETE("/:id", tasksHandler.DeleteTask)
	}

	return r
}
