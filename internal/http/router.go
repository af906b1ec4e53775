package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/quizhub/accounts/internal/account"
	"github.com/quizhub/accounts/internal/auth"
	"github.com/quizhub/accounts/internal/config"
	"github.com/quizhub/accounts/internal/http/handlers"
	"github.com/quizhub/accounts/internal/http/middlewares"
	"github.com/quizhub/accounts/internal/observability"
	"github.com/quizhub/accounts/internal/repo/postgres"
	"github.com/quizhub/accounts/internal/security"
)

// hasher adapts the password helpers to the account service port.
type hasher struct{}

func (hasher) Hash(plain string) (string, error) { return security.HashPassword(plain) }
func (hasher) Verify(plain, hash string) bool    { return security.VerifyPassword(plain, hash) }

// NewRouter wires the full HTTP surface. rdb may be nil; the login rate
// limiter then falls back to its in-process counter.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics live on a registry owned by this router so tests can build
	// routers freely
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware("accounts-api"))
	r.Use(prom.GinHandleMiddleware())

	// health + metrics

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

	// wire up stores and the account core

	usersRepo := postgres.NewUsersRepo(pool, prom)
	rolesRepo := postgres.NewRolesRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	svc := account.NewService(usersRepo, rolesRepo, hasher{}, jwtManager)
	accounts := account.NewInstrumented(svc, log, prom)

	authHandler := handlers.NewAuthHandler(accounts)
	usersHandler := handlers.NewUsersHandler(accounts)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// login gets a rate limit; everything else rides the global stack

	var counter middlewares.WindowCounter = middlewares.NewMemoryCounter()

	if rdb != nil {
		counter = middlewares.NewRedisCounter(rdb)
	}

	loginLimiter := middlewares.NewRateLimiter(counter, cfg.LoginRateLimit, time.Duration(cfg.LoginRateWindowSecs)*time.Second)

	authGroup := r.Group("/auth")
	authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/register", authHandler.Register)

	// admin-only user management

	users := r.Group("/users", authMW.RequireAuth(), authMW.RequireRole("admin"))
	users.GET("", usersHandler.ListUsers)
	users.POST("", usersHandler.CreateUser)
	users.PUT("/:id/role", usersHandler.AssignRole)

	return r
}
