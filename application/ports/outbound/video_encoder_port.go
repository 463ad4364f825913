package outbound

import "context"

type EncodeVideoRequest struct {
	TextFilePath    string
	AudioPath       string
	OutputPath      string
	DurationSeconds float64
	ScrollDistance  float64
	Velocity        float64
	PadAudio        bool
}

type VideoEncoderPort interface {
	Encode(ctx context.Context, req EncodeVideoRequest) error
}
