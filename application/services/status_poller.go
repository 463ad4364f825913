package services

import (
	"context"
	"strings"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
)

type statusPoller struct {
	store            outbound.ContentStorePort
	artifactBasePath string
}

func NewStatusPoller(store outbound.ContentStorePort, artifactBasePath string) inbound.StatusPollerPort {
	return &statusPoller{
		store:            store,
		artifactBasePath: strings.TrimRight(artifactBasePath, "/"),
	}
}

// Status derives a job's state from the files in the store alone. A failure
// marker wins over any artifacts already present.
func (p *statusPoller) Status(_ context.Context, rawContentID string) (*domain.ContentStatus, error) {
	id, err := domain.ParseContentID(rawContentID)
	if err != nil {
		return nil, err
	}

	status := &domain.ContentStatus{
		ContentID:  id.Value,
		OutputType: id.OutputType,
		Status:     domain.StatusProcessing,
	}

	if marker, failed := p.store.FailureOf(id); failed {
		status.Status = domain.StatusFailed
		status.Error = marker.Message
		return status, nil
	}

	audioReady := p.store.Exists(id, domain.AudioSuffix)
	videoReady := p.store.Exists(id, domain.VideoSuffix)

	switch id.OutputType {
	case domain.AudioOutputType:
		if audioReady {
			status.ContentURL = p.urlOf(id, domain.AudioSuffix)
		}
		status.Ready = audioReady
	case domain.BothOutputType:
		if videoReady {
			status.ContentURL = p.urlOf(id, domain.VideoSuffix)
		}
		if audioReady {
			status.AudioURL = p.urlOf(id, domain.AudioSuffix)
		}
		status.Ready = audioReady && videoReady
	default:
		if videoReady {
			status.ContentURL = p.urlOf(id, domain.VideoSuffix)
		}
		status.Ready = videoReady
	}

	if status.Ready {
		status.Status = domain.StatusCompleted
	}
	return status, nil
}

func (p *statusPoller) urlOf(id domain.ContentID, suffix string) string {
	return p.artifactBasePath + "/" + id.FileName(suffix)
}
