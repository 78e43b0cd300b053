package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/medication-reminder/internal/container"
	handlers "github.com/oksasatya/medication-reminder/internal/interface/http"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
	"github.com/oksasatya/medication-reminder/internal/router/modules"
)

// InitModules builds every module's handler from the container and adds it
// to the registry.
func InitModules(r *Registry, c *container.Container) {
	system := handlers.NewSystemHandler(c)
	r.Engine.GET("/files/*path", system.File)

	r.Add(
		modules.NewSystemModule(system, c.Redis),
		modules.NewAuthModule(handlers.NewAuthHandler(c), c.Redis, c.Config),
		modules.NewUserModule(handlers.NewUserHandler(c), c.Redis),
		modules.NewMedicamentoModule(handlers.NewMedicamentoHandler(c), c.Redis),
	)
}

// New builds the engine with the global middleware and every module.
func New(c *container.Container) *gin.Engine {
	cfg := c.Config
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Refresh-Token"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}

	reg := NewRegistry(r)
	reg.Use(middleware.Session(c.Sessions, c.Logger))
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
