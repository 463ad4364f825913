package outbound

import (
	"context"
	"io"
)

type SynthesizeSpeechRequest struct {
	Text    string
	VoiceID string
}

type SpeechBackendPort interface {
	Synthesize(ctx context.Context, req SynthesizeSpeechRequest) (io.ReadCloser, error)
}

type AudioProberPort interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
