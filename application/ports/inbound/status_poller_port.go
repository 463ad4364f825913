package inbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type StatusPollerPort interface {
	Status(ctx context.Context, rawContentID string) (*domain.ContentStatus, error)
}
