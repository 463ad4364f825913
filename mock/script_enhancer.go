package mock_generator

import (
	"context"
	"time"
	"weaveit-pipeline/application/ports/outbound"
)

type scriptEnhancer struct {
	logger     outbound.LoggerPort
	narrations map[string]MockNarration
}

// NewScriptEnhancer answers from canned narrations and otherwise reads the
// script back with a short preamble.
func NewScriptEnhancer(narrations map[string]MockNarration, logger outbound.LoggerPort) outbound.ScriptEnhancerPort {
	if narrations == nil {
		narrations = map[string]MockNarration{}
	}
	return &scriptEnhancer{
		logger:     logger,
		narrations: narrations,
	}
}

func (s *scriptEnhancer) Enhance(ctx context.Context, req outbound.EnhanceScriptRequest) (string, error) {
	canned, ok := s.narrations[req.Title]
	if !ok {
		return "Here is a walkthrough of " + req.Title + ". " + req.Script, nil
	}

	select {
	case <-time.After(time.Duration(canned.Delay) * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	s.logger.DebugWithFields("Serving canned narration", map[string]interface{}{
		"title": req.Title,
	})
	return canned.Narration, nil
}
