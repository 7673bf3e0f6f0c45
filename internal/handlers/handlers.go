package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobvision/api/internal/config"
	"jobvision/api/internal/middleware"
	"jobvision/api/internal/service"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	db          *pgxpool.Pool
	cache       *redis.Client
}

// NewHandlerSet builds the route handlers. db and cache may be nil when the
// API runs on the in-memory store or without the revocation list.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, auth *service.AuthService, db *pgxpool.Pool, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		db:          db,
		cache:       cache,
	}
}

func (h HandlerSet) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/verify", h.Verify)
		auth.POST("/resend", h.ResendCode)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/fetch-by-email", h.FetchByEmail)
		auth.GET("/user/:id", h.FetchByID)

		auth.GET("/me", middleware.Auth(h.authService, h.log), h.Me)
	}
}

func (h HandlerSet) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is running"})
}
