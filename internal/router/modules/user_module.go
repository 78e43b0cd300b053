package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/medication-reminder/internal/interface/http"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
)

// UserModule wires the signed-in user's profile routes.
type UserModule struct {
	Handler *handlers.UserHandler
	RDB     *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(
		middleware.RequireAuth(),
		middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/me", m.Handler.UpdateMe)
		auth.DELETE("/me", m.Handler.DeleteMe)
		auth.POST("/me/location", m.Handler.UpdateLocation)
		auth.POST("/me/avatar", middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
		auth.GET("/users/:id", m.Handler.GetUser)
	}
}
