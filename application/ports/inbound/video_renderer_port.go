package inbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type VideoRendererPort interface {
	Render(ctx context.Context, id domain.ContentID, script domain.DisplayScript, audio *domain.NarrationAudio) (*domain.VideoArtifact, error)
}
