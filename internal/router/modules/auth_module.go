package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/medication-reminder/config"
	handlers "github.com/oksasatya/medication-reminder/internal/interface/http"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
)

// AuthModule wires sign-up, sign-in and session routes.
// Public: POST /api/register, /api/login, /api/refresh
// Protected: POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
	Cfg     *config.Config
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, cfg *config.Config) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, Cfg: cfg}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.Cfg.Env == "development" {
		allow = middleware.AllowPrivateIP()
	}
	authLimiter := middleware.RateLimit(m.RDB, m.Cfg.AuthRateLimit, m.Cfg.AuthRateWindow, middleware.KeyByIPAndPath(), allow)
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), allow)

	rg.POST("/register", authLimiter, m.Handler.Register)
	rg.POST("/login", authLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/logout", middleware.RequireAuth(), m.Handler.Logout)
}
