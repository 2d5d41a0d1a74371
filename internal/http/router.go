package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/seembe/seembe/internal/auth"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/http/handlers"
	"github.com/seembe/seembe/internal/http/middlewares"
	"github.com/seembe/seembe/internal/observability"
	"github.com/seembe/seembe/internal/repo/postgres"
)

const maxRequestBody = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// a fresh registry per router keeps parallel test instances apart
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(otelgin.Middleware("seembe-api"))
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

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	celebrantsRepo := postgres.NewCelebrantsRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool)
	messagesRepo := postgres.NewMessagesRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())
	transport := auth.NewCookieTransport(cfg.SessionCookieName, cfg.Env != "dev")
	guard := authz.NewGuard()

	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo, transport)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, transport, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo, cfg)
	celebrantsHandler := handlers.NewCelebrantsHandler(celebrantsRepo, eventsRepo, guard)
	eventsHandler := handlers.NewEventsHandler(eventsRepo, celebrantsRepo, guard)
	messagesHandler := handlers.NewMessagesHandler(messagesRepo, eventsRepo, guard)

	// credential endpoints get a per-IP limiter against password guessing
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	authRoutes.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/profile", authMW.RequireAuth(), authHandler.Profile)

	celebrants := api.Group("/celebrants", authMW.RequireAuth())
	celebrants.POST("", celebrantsHandler.Create)
	celebrants.GET("", celebrantsHandler.List)
	celebrants.GET("/:id", celebrantsHandler.GetByID)
	celebrants.PUT("/:id", celebrantsHandler.Update)
	celebrants.DELETE("/:id", celebrantsHandler.Delete)

	events := api.Group("/events", authMW.RequireAuth())
	events.POST("", eventsHandler.Create)
	events.GET("", eventsHandler.List)
	events.GET("/:id", eventsHandler.GetByID)
	events.PUT("/:id", eventsHandler.Update)
	events.DELETE("/:id", eventsHandler.Delete)

	messages := api.Group("/messages", authMW.RequireAuth())
	messages.GET("/event/:eventId", messagesHandler.ListByEvent)
	messages.POST("/event/:eventId", messagesHandler.Create)
	messages.PUT("/:id", messagesHandler.Update)
	messages.DELETE("/:id", messagesHandler.Delete)

	users := api.Group("/users", authMW.RequireAuth())
	users.PUT("/me", usersHandler.UpdateMe)

	adminUsers := users.Group("", authMW.RequireAdmin())
	adminUsers.GET("", usersHandler.List)
	adminUsers.POST("", usersHandler.Create)
	adminUsers.GET("/:id", usersHandler.GetByID)
	adminUsers.PUT("/:id", usersHandler.Update)
	adminUsers.DELETE("/:id", usersHandler.Delete)

	return r
}
