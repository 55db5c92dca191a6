package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/service"
)

type engineInfo interface {
	DefaultEngine() string
	AvailableEngines() []string
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	engines engineInfo
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(svc *service.ScheduleService) *HealthHandler {
	return &HealthHandler{engines: svc}
}

// Health godoc
// @Summary Service health and engine availability
// @Tags Observability
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	engines := h.engines.AvailableEngines()
	exact := false
	for _, name := range engines {
		if name == "exact" {
			exact = true
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"engine":          h.engines.DefaultEngine(),
		"engines":         engines,
		"exact_available": exact,
	})
}

// Ready reports readiness for traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
