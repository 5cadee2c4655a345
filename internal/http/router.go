package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/raxilor/ratehub/internal/auth"
	"github.com/raxilor/ratehub/internal/config"
	"github.com/raxilor/ratehub/internal/domain/user"
	"github.com/raxilor/ratehub/internal/http/handlers"
	"github.com/raxilor/ratehub/internal/http/middlewares"
	"github.com/raxilor/ratehub/internal/observability"
	"github.com/raxilor/ratehub/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // request bodies here are small JSON documents

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry for this process
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware("ratehub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	storesRepo := postgres.NewStoresRepo(pool, prom)
	ratingsRepo := postgres.NewRatingsRepo(pool, prom)

	// token manager + handlers
	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLHours)*time.Hour)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	adminHandler := handlers.NewAdminHandler(usersRepo, storesRepo, ratingsRepo)
	ownerHandler := handlers.NewOwnerHandler(storesRepo, ratingsRepo)
	storesHandler := handlers.NewStoresHandler(storesRepo, ratingsRepo)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.PUT("/update-password", authMW.RequireAuth(), authMW.RequireRole(), authHandler.UpdatePassword)
	}

	adminGroup := r.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
	{
		adminGroup.GET("/dashboard", adminHandler.Dashboard)
		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.POST("/stores", adminHandler.CreateStore)
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.GET("/stores", adminHandler.ListStores)
	}

	ownerGroup := r.Group("/owner", authMW.RequireAuth(), authMW.RequireRole(user.RoleStoreOwner))
	{
		ownerGroup.GET("/dashboard", ownerHandler.Dashboard)
		ownerGroup.POST("/store", ownerHandler.CreateStore)
	}

	userGroup := r.Group("/user", authMW.RequireAuth(), authMW.RequireRole(user.RoleUser))
	{
		userGroup.GET("/stores", storesHandler.ListStores)
		userGroup.POST("/rate", storesHandler.SubmitRating)
	}

	return r
}
