package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/medication-reminder/internal/interface/http"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
)

// SystemModule exposes health and runtime counters.
type SystemModule struct {
	Handler *handlers.SystemHandler
	RDB     *redis.Client
}

func NewSystemModule(h *handlers.SystemHandler, rdb *redis.Client) *SystemModule {
	return &SystemModule{Handler: h, RDB: rdb}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/health", m.Handler.Health)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
