package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/lock_utils"

	"github.com/google/uuid"
)

var stageKinds = map[domain.JobState]error{
	domain.JobStateEnhancing:    domain.ErrEnhancementFailed,
	domain.JobStateSynthesizing: domain.ErrSynthesisFailed,
	domain.JobStateRendering:    domain.ErrRenderFailed,
}

type contentJobOrchestrator struct {
	logger          outbound.LoggerPort
	narrationWriter inbound.NarrationWriterPort
	synthesizer     inbound.SpeechSynthesizerPort
	renderer        inbound.VideoRendererPort
	store           outbound.ContentStorePort
	jobPool         outbound.TaskDispatcher
	synthesisPool   outbound.TaskDispatcher
	renderPool      outbound.TaskDispatcher
	metrics         outbound.PipelineMetricsPort
	ledger          outbound.JobEventLedgerPort
	mirror          outbound.ArtifactMirrorPort
	jobLocks        lock_utils.KeyedMutex
}

// NewContentJobOrchestrator wires the pipeline. ledger and mirror are optional
// and may be nil.
func NewContentJobOrchestrator(
	logger outbound.LoggerPort,
	narrationWriter inbound.NarrationWriterPort,
	synthesizer inbound.SpeechSynthesizerPort,
	renderer inbound.VideoRendererPort,
	store outbound.ContentStorePort,
	jobPool outbound.TaskDispatcher,
	synthesisPool outbound.TaskDispatcher,
	renderPool outbound.TaskDispatcher,
	metrics outbound.PipelineMetricsPort,
	ledger outbound.JobEventLedgerPort,
	mirror outbound.ArtifactMirrorPort) inbound.ContentJobOrchestratorPort {
	return &contentJobOrchestrator{
		logger:          logger,
		narrationWriter: narrationWriter,
		synthesizer:     synthesizer,
		renderer:        renderer,
		store:           store,
		jobPool:         jobPool,
		synthesisPool:   synthesisPool,
		renderPool:      renderPool,
		metrics:         metrics,
		ledger:          ledger,
		mirror:          mirror,
	}
}

// Submit runs the job on the job pool. The job is detached from ctx: it keeps
// running after the request that started it has finished. A previous failure
// marker for the id is cleared before Submit returns, so the first poll after
// acceptance never reports the old outcome.
func (o *contentJobOrchestrator) Submit(ctx context.Context, job domain.ContentJob) error {
	previous, hadFailure := o.store.FailureOf(job.ID)
	if hadFailure {
		if err := o.store.ClearFailure(job.ID); err != nil {
			o.logger.WarnWithFields("Failed to clear previous failure marker", map[string]interface{}{
				"content_id": job.ID.Value,
				"error":      err.Error(),
			})
		}
	}

	detached := context.WithoutCancel(ctx)
	err := o.jobPool.Submit(func() {
		o.Run(detached, job)
	})
	if err != nil {
		if hadFailure {
			if markErr := o.store.MarkFailed(job.ID, *previous); markErr != nil {
				o.logger.Error(markErr, "Failed to restore failure marker")
			}
		}
		o.logger.ErrorWithFields(err, "Failed to submit job", map[string]interface{}{
			"content_id": job.ID.Value,
			"running":    o.jobPool.Running(),
			"capacity":   o.jobPool.Cap(),
		})
		return fmt.Errorf("%w: %w", domain.ErrPoolOverloaded, err)
	}
	return nil
}

func (o *contentJobOrchestrator) Run(ctx context.Context, job domain.ContentJob) *domain.JobResult {
	unlock := o.jobLocks.Lock(job.ID.Value)
	defer unlock()

	runID := uuid.NewString()
	result := &domain.JobResult{ContentID: job.ID}
	o.metrics.JobStarted(job.ID.OutputType)

	if err := o.store.ClearFailure(job.ID); err != nil {
		o.logger.WarnWithFields("Failed to clear previous failure marker", map[string]interface{}{
			"content_id": job.ID.Value,
			"error":      err.Error(),
		})
	}

	o.transition(ctx, runID, job.ID, domain.JobStateEnhancing, "")
	var narration domain.NarrationText
	err := o.timed(domain.JobStateEnhancing, job.ID, func() error {
		var err error
		narration, err = o.narrationWriter.Write(ctx, job)
		return err
	})
	if err != nil {
		return o.fail(ctx, runID, result, domain.JobStateEnhancing, err)
	}

	o.transition(ctx, runID, job.ID, domain.JobStateSynthesizing, "")
	var audio *domain.NarrationAudio
	err = o.timed(domain.JobStateSynthesizing, job.ID, func() error {
		return o.runBounded(o.synthesisPool, func() error {
			var err error
			audio, err = o.synthesizer.Synthesize(ctx, job.ID, narration)
			return err
		})
	})
	if err != nil {
		return o.fail(ctx, runID, result, domain.JobStateSynthesizing, err)
	}
	result.Audio = audio

	if job.ID.OutputType.WantsVideo() {
		o.transition(ctx, runID, job.ID, domain.JobStateRendering, "")
		var video *domain.VideoArtifact
		err = o.timed(domain.JobStateRendering, job.ID, func() error {
			return o.runBounded(o.renderPool, func() error {
				var err error
				video, err = o.renderer.Render(ctx, job.ID, job.Script, audio)
				return err
			})
		})
		o.synthesizer.Release(audio)
		if err != nil {
			return o.fail(ctx, runID, result, domain.JobStateRendering, err)
		}
		result.Video = video
	}

	result.State = domain.JobStateDone
	o.transition(ctx, runID, job.ID, domain.JobStateDone, "")
	o.metrics.JobFinished(job.ID.OutputType, domain.JobStateDone)
	o.mirrorArtifacts(ctx, result)

	return result
}

// runBounded executes fn on pool and waits for it, so at most Cap() calls of
// a stage run at once across all jobs.
func (o *contentJobOrchestrator) runBounded(pool outbound.TaskDispatcher, fn func() error) error {
	done := make(chan error, 1)
	err := pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic in stage: %v", p)
			}
		}()
		done <- fn()
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPoolOverloaded, err)
	}
	return <-done
}

func (o *contentJobOrchestrator) timed(stage domain.JobState, id domain.ContentID, fn func() error) error {
	start := time.Now()
	err := fn()
	o.metrics.ObserveStage(stage, id.OutputType, time.Since(start), err)
	return err
}

func (o *contentJobOrchestrator) fail(ctx context.Context, runID string, result *domain.JobResult, stage domain.JobState, err error) *domain.JobResult {
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) {
		stageErr = domain.NewStageError(stage, stageKinds[stage], err)
	}

	result.State = domain.JobStateFailed
	result.FailedStage = stageErr.Stage
	result.Err = stageErr

	o.logger.ErrorWithFields(err, "Content job failed", map[string]interface{}{
		"content_id":  result.ContentID.Value,
		"output_type": result.ContentID.OutputType,
		"stage":       stageErr.Stage,
		"run_id":      runID,
	})

	markErr := o.store.MarkFailed(result.ContentID, domain.FailureMarker{
		ContentID: result.ContentID.Value,
		Stage:     stageErr.Stage,
		Message:   stageErr.Kind.Error(),
		FailedAt:  time.Now().Unix(),
	})
	if markErr != nil {
		o.logger.ErrorWithFields(markErr, "Failed to write failure marker", map[string]interface{}{
			"content_id": result.ContentID.Value,
		})
	}

	o.transition(ctx, runID, result.ContentID, domain.JobStateFailed, stageErr.Error())
	o.metrics.JobFinished(result.ContentID.OutputType, domain.JobStateFailed)
	return result
}

func (o *contentJobOrchestrator) transition(ctx context.Context, runID string, id domain.ContentID, state domain.JobState, message string) {
	o.logger.InfoWithFields("Content job state changed", map[string]interface{}{
		"content_id":  id.Value,
		"output_type": id.OutputType,
		"state":       state,
		"run_id":      runID,
	})

	if o.ledger == nil {
		return
	}
	err := o.ledger.Record(ctx, outbound.JobEvent{
		RunID:      runID,
		ContentID:  id,
		State:      state,
		Message:    message,
		OccurredAt: time.Now(),
	})
	if err != nil {
		o.logger.WarnWithFields("Failed to record job event", map[string]interface{}{
			"content_id": id.Value,
			"state":      state,
			"error":      err.Error(),
		})
	}
}

func (o *contentJobOrchestrator) mirrorArtifacts(ctx context.Context, result *domain.JobResult) {
	if o.mirror == nil {
		return
	}

	paths := map[string]string{}
	if result.Audio != nil && !result.Audio.Staged {
		paths[domain.AudioSuffix] = result.Audio.Path
	}
	if result.Video != nil {
		paths[domain.VideoSuffix] = result.Video.Path
	}

	for _, suffix := range result.ContentID.OutputType.Suffixes() {
		path, ok := paths[suffix]
		if !ok {
			continue
		}
		res, err := o.mirror.Mirror(ctx, outbound.MirrorArtifactRequest{
			ContentID: result.ContentID,
			Suffix:    suffix,
			FilePath:  path,
		})
		if err != nil {
			o.logger.WarnWithFields("Failed to mirror artifact", map[string]interface{}{
				"content_id": result.ContentID.Value,
				"suffix":     suffix,
				"error":      err.Error(),
			})
			continue
		}
		o.logger.DebugWithFields("Artifact mirrored", map[string]interface{}{
			"content_id": result.ContentID.Value,
			"key":        res.Key,
		})
	}
}
