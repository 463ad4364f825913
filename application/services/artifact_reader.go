package services

import (
	"context"
	"fmt"
	"strings"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
)

var artifactContentTypes = map[string]string{
	domain.AudioSuffix: "audio/mpeg",
	domain.VideoSuffix: "video/mp4",
}

type artifactReader struct {
	store outbound.ContentStorePort
}

func NewArtifactReader(store outbound.ContentStorePort) inbound.ArtifactReaderPort {
	return &artifactReader{store: store}
}

// Open serves "{id}.mp3" and "{id}.mp4". A bare "{id}" means the video.
func (a *artifactReader) Open(_ context.Context, fileName string) (*inbound.OpenArtifactResponse, error) {
	value, suffix, found := strings.Cut(fileName, ".")
	if !found {
		suffix = domain.VideoSuffix
	}
	contentType, known := artifactContentTypes[suffix]
	if !known {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, fileName)
	}

	id, err := domain.ParseContentID(value)
	if err != nil {
		return nil, err
	}

	artifact, err := a.store.Open(id, suffix)
	if err != nil {
		return nil, err
	}
	return &inbound.OpenArtifactResponse{Artifact: artifact, ContentType: contentType}, nil
}
