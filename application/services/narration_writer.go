package services

import (
	"context"
	"strings"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
)

type narrationWriter struct {
	logger   outbound.LoggerPort
	enhancer outbound.ScriptEnhancerPort
}

func NewNarrationWriter(logger outbound.LoggerPort, enhancer outbound.ScriptEnhancerPort) inbound.NarrationWriterPort {
	return &narrationWriter{
		logger:   logger,
		enhancer: enhancer,
	}
}

// Write asks the enhancer for a spoken explanation of the script. The display
// script itself is left untouched for the renderer.
func (n *narrationWriter) Write(ctx context.Context, job domain.ContentJob) (domain.NarrationText, error) {
	if strings.TrimSpace(string(job.Script)) == "" {
		return "", domain.NewStageError(domain.JobStateEnhancing, domain.ErrEnhancementFailed, domain.ErrEmptyScript)
	}

	text, err := n.enhancer.Enhance(ctx, outbound.EnhanceScriptRequest{
		Script: string(job.Script),
		Title:  job.Title,
	})
	if err != nil {
		n.logger.ErrorWithFields(err, "Script enhancement failed", map[string]interface{}{
			"content_id": job.ID.Value,
		})
		return "", domain.NewStageError(domain.JobStateEnhancing, domain.ErrEnhancementFailed, err)
	}

	n.logger.DebugWithFields("Narration written", map[string]interface{}{
		"content_id": job.ID.Value,
		"words":      domain.CountWords(text),
	})

	return domain.NarrationText(text), nil
}
