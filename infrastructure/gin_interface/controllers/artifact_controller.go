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

type ArtifactController interface {
	ServeArtifact(c *gin.Context)
	RegisterRoutes(g gin.IRoutes)
}

type artifactController struct {
	logger outbound.LoggerPort
	reader inbound.ArtifactReaderPort
}

func NewArtifactController(logger outbound.LoggerPort, reader inbound.ArtifactReaderPort) ArtifactController {
	return &artifactController{
		logger: logger,
		reader: reader,
	}
}

// ServeArtifact streams a committed artifact with range and HEAD support.
func (a *artifactController) ServeArtifact(c *gin.Context) {
	res, err := a.reader.Open(c.Request.Context(), c.Param("file"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidContentID) {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.ErrorResponse{Error: "content not found"})
			return
		}
		a.logger.Error(err, "failed to open artifact")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to open content"})
		return
	}
	defer func() {
		if err := res.Artifact.Close(); err != nil {
			a.logger.Error(err, "failed to close artifact")
		}
	}()

	c.Header("Content-Type", res.ContentType)
	http.ServeContent(c.Writer, c.Request, res.Artifact.Name(), res.Artifact.ModTime(), res.Artifact)
}

func (a *artifactController) RegisterRoutes(g gin.IRoutes) {
	g.GET("/api/videos/:file", a.ServeArtifact)
	g.HEAD("/api/videos/:file", a.ServeArtifact)
}
