package outbound

import (
	"context"
	"time"
	"weaveit-pipeline/domain"
)

type JobEvent struct {
	RunID      string
	ContentID  domain.ContentID
	State      domain.JobState
	Message    string
	OccurredAt time.Time
}

type JobEventLedgerPort interface {
	Record(ctx context.Context, event JobEvent) error
}
