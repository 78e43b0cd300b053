package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/medication-reminder/internal/container"
	"github.com/oksasatya/medication-reminder/internal/infrastructure/storage"
	"github.com/oksasatya/medication-reminder/pkg/response"
)

type SystemHandler struct {
	C *container.Container
}

func NewSystemHandler(c *container.Container) *SystemHandler {
	return &SystemHandler{C: c}
}

// Health GET /api/health
func (h *SystemHandler) Health(c *gin.Context) {
	cfg := h.C.Config
	response.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"backend": cfg.Backend,
		"search":  h.C.ES != nil,
		"redis":   h.C.Redis != nil,
		"mail":    h.C.Notifier.Enabled(),
	}, "healthy", nil)
}

// File GET /files/*path serves uploads kept by the in-memory file store.
func (h *SystemHandler) File(c *gin.Context) {
	mem, ok := h.C.Files.(*storage.Memory)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	obj, found := mem.Get(strings.TrimPrefix(c.Param("path"), "/"))
	if !found {
		c.Status(http.StatusNotFound)
		return
	}
	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Data(http.StatusOK, ct, obj.Data)
}
