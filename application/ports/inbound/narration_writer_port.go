package inbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type NarrationWriterPort interface {
	Write(ctx context.Context, job domain.ContentJob) (domain.NarrationText, error)
}
