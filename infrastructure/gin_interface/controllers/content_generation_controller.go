package controllers

import (
	"errors"
	"net/http"
	"strings"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/infrastructure/gin_interface/dto"
	"weaveit-pipeline/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContentGenerationController interface {
	Generate(c *gin.Context)
	Estimate(c *gin.Context)
	RegisterRoutes(g gin.IRoutes, guards ...gin.HandlerFunc)
}

type contentGenerationController struct {
	logger       outbound.LoggerPort
	orchestrator inbound.ContentJobOrchestratorPort
	statusPath   string
}

func NewContentGenerationController(
	logger outbound.LoggerPort,
	orchestrator inbound.ContentJobOrchestratorPort,
	statusPath string,
) ContentGenerationController {
	return &contentGenerationController{
		logger:       logger,
		orchestrator: orchestrator,
		statusPath:   strings.TrimRight(statusPath, "/"),
	}
}

// Generate accepts a job and returns before any stage has run. Clients poll
// the status URL for the outcome.
func (s *contentGenerationController) Generate(c *gin.Context) {
	var req dto.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.ErrEmptyScript.Error()})
		return
	}

	id, err := domain.ResolveContentID(req.ContentID, req.OutputType, req.PaymentSignature, uuid.NewString())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = id.Value
	}

	err = s.orchestrator.Submit(c.Request.Context(), domain.ContentJob{
		ID:     id,
		Title:  title,
		Script: domain.DisplayScript(req.Script),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrPoolOverloaded) {
			status = http.StatusServiceUnavailable
		}
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "failed to schedule content generation"})
		return
	}

	s.logger.InfoWithFields("Content job accepted", map[string]interface{}{
		"content_id":     id.Value,
		"output_type":    id.OutputType,
		"user_id":        c.GetString(middleware.ContextUserIDKey),
		"wallet_address": req.WalletAddress,
	})

	c.JSON(http.StatusAccepted, dto.GenerateContentResponse{
		ContentID:        id.Value,
		OutputType:       id.OutputType,
		Title:            title,
		StatusURL:        s.statusPath + "/" + id.Value,
		EstimatedMinutes: domain.EstimateNarrationMinutes(req.Script),
		ScriptQuality:    domain.RateScript(req.Script),
	})
}

func (s *contentGenerationController) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.EstimateResponse{
		Words:            domain.CountWords(req.Script),
		EstimatedMinutes: domain.EstimateNarrationMinutes(req.Script),
		ScriptQuality:    domain.RateScript(req.Script),
	})
}

// RegisterRoutes puts guards such as auth and rate limiting in front of
// generation only. Estimates stay public.
func (s *contentGenerationController) RegisterRoutes(g gin.IRoutes, guards ...gin.HandlerFunc) {
	g.POST("/api/generate", append(guards, s.Generate)...)
	g.POST("/api/estimate", s.Estimate)
}
