// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/kodbank/internal/config"
	"github.com/iliyamo/kodbank/internal/handler"
	"github.com/iliyamo/kodbank/internal/middleware"
	"github.com/iliyamo/kodbank/internal/repository"
	"github.com/iliyamo/kodbank/internal/service"
	"github.com/iliyamo/kodbank/internal/utils"
)

// Deps is everything the routes need.  Redis may be nil.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        *sql.DB
	Redis     *redis.Client
	Tokens    *utils.TokenIssuer
	Hasher    utils.Hasher
	Events    service.EventPublisher
	Chat      *service.ChatClient
}

// RegisterRoutes registers the probes, which sit outside rate limiting.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAPI registers the /api routes.  Auth and chat are public but rate
// limited; /api/user requires a live session.
func RegisterAPI(e *echo.Echo, d Deps) {
	accounts := repository.NewAccountRepo(d.DB)
	sessions := repository.NewSessionRepo(d.DB)

	auth := handler.NewAuthHandler(d.Cfg, accounts, sessions, d.Tokens, d.Hasher, d.Events)
	users := handler.NewUserHandler()
	chat := handler.NewChatHandler(d.Chat)

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	a := e.Group("/api/auth", limit)
	a.POST("/register", auth.Register)
	a.POST("/login", auth.Login)

	e.POST("/api/chat", chat.Chat, limit)

	u := e.Group("/api/user")
	u.Use(middleware.RequireSession(d.Tokens, accounts, sessions))
	u.Use(middleware.NewRedisCache(d.Cache, d.Redis))
	u.GET("/balance", users.Balance)
	u.GET("/profile", users.Profile)
}

// New builds a fully configured echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS(d.Cfg.CORSOrigins))

	RegisterRoutes(e, d.DB)
	RegisterAPI(e, d)
	return e
}
