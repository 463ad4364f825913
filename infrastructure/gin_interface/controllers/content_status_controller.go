package controllers

import (
	"errors"
	"net/http"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/infrastructure/gin_interface/dto"

	"github.com/gin-gonic/gin"
)

type ContentStatusController interface {
	GetStatus(c *gin.Context)
	RegisterRoutes(g gin.IRoutes)
}

type contentStatusController struct {
	logger outbound.LoggerPort
	poller inbound.StatusPollerPort
}

func NewContentStatusController(logger outbound.LoggerPort, poller inbound.StatusPollerPort) ContentStatusController {
	return &contentStatusController{
		logger: logger,
		poller: poller,
	}
}

func (s *contentStatusController) GetStatus(c *gin.Context) {
	status, err := s.poller.Status(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidContentID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error(err, "failed to read content status")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read content status"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, status)
}

func (s *contentStatusController) RegisterRoutes(g gin.IRoutes) {
	g.GET("/status/:contentId", s.GetStatus)
	g.GET("/api/videos/status/:contentId", s.GetStatus)
}
