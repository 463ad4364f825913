package outbound

import (
	"time"
	"weaveit-pipeline/domain"
)

type PipelineMetricsPort interface {
	ObserveStage(stage domain.JobState, outputType domain.OutputType, elapsed time.Duration, err error)
	JobFinished(outputType domain.OutputType, state domain.JobState)
	JobStarted(outputType domain.OutputType)
}
