package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/medication-reminder/internal/interface/http"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
)

// MedicamentoModule wires the medicamento routes; all require a session.
type MedicamentoModule struct {
	Handler *handlers.MedicamentoHandler
	RDB     *redis.Client
}

func NewMedicamentoModule(h *handlers.MedicamentoHandler, rdb *redis.Client) *MedicamentoModule {
	return &MedicamentoModule{Handler: h, RDB: rdb}
}

func (m *MedicamentoModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/medicamentos")
	g.Use(
		middleware.RequireAuth(),
		middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
		g.POST("/:id/dose", m.Handler.Dose)
		g.POST("/:id/foto", middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadFoto)
	}
}
