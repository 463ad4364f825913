package inbound

import (
	"context"
	"weaveit-pipeline/domain"
)

type ContentJobOrchestratorPort interface {
	// Run executes the job to completion on the calling goroutine.
	Run(ctx context.Context, job domain.ContentJob) *domain.JobResult
	// Submit schedules the job in the background and returns immediately.
	Submit(ctx context.Context, job domain.ContentJob) error
}
