package inbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, id domain.ContentID, narration domain.NarrationText) (*domain.NarrationAudio, error)
	// Release drops staged audio that was only kept as a render input.
	Release(audio *domain.NarrationAudio)
}
