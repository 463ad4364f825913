package inbound

import (
	"context"
	"weaveit-pipeline/application/ports/outbound"
)

type OpenArtifactResponse struct {
	Artifact    outbound.ArtifactReader
	ContentType string
}

type ArtifactReaderPort interface {
	// Open resolves a public file name such as "both_7.mp4" to a committed artifact.
	Open(ctx context.Context, fileName string) (*OpenArtifactResponse, error)
}
