package outbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type MirrorArtifactRequest struct {
	ContentID domain.ContentID
	Suffix    string
	FilePath  string
}

type MirrorArtifactResponse struct {
	Key         string
	StoreRegion string
}

type ArtifactMirrorPort interface {
	Mirror(ctx context.Context, req MirrorArtifactRequest) (*MirrorArtifactResponse, error)
}
