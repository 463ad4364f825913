package controllers

import (
	"net/http"
	"weaveit-pipeline/application/ports/outbound"

	"github.com/gin-gonic/gin"
)

type HealthController interface {
	Health(c *gin.Context)
	RegisterRoutes(g gin.IRoutes)
}

type healthController struct {
	jobPool        outbound.TaskDispatcher
	metricsHandler http.Handler
}

// NewHealthController exposes liveness and, when metricsHandler is not nil,
// the Prometheus scrape endpoint.
func NewHealthController(jobPool outbound.TaskDispatcher, metricsHandler http.Handler) HealthController {
	return &healthController{
		jobPool:        jobPool,
		metricsHandler: metricsHandler,
	}
}

func (h *healthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"runningJobs": h.jobPool.Running(),
		"jobCapacity": h.jobPool.Cap(),
	})
}

func (h *healthController) RegisterRoutes(g gin.IRoutes) {
	g.GET("/health", h.Health)
	if h.metricsHandler != nil {
		g.GET("/metrics", gin.WrapH(h.metricsHandler))
	}
}
