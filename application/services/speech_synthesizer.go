package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
)

type speechSynthesizer struct {
	logger  outbound.LoggerPort
	backend outbound.SpeechBackendPort
	prober  outbound.AudioProberPort
	store   outbound.ContentStorePort
	staged  sync.Map
}

func NewSpeechSynthesizer(logger outbound.LoggerPort, backend outbound.SpeechBackendPort, prober outbound.AudioProberPort,
	store outbound.ContentStorePort) inbound.SpeechSynthesizerPort {
	return &speechSynthesizer{
		logger:  logger,
		backend: backend,
		prober:  prober,
		store:   store,
	}
}

// Synthesize streams speech into a staged file and measures it. Audio is
// published as {id}.mp3 only when the output type exposes audio; otherwise it
// stays staged until Release.
func (s *speechSynthesizer) Synthesize(ctx context.Context, id domain.ContentID, narration domain.NarrationText) (*domain.NarrationAudio, error) {
	if strings.TrimSpace(string(narration)) == "" {
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrSynthesisFailed, domain.ErrEmptyScript)
	}

	fields := map[string]interface{}{
		"content_id":  id.Value,
		"output_type": id.OutputType,
	}

	stream, err := s.backend.Synthesize(ctx, outbound.SynthesizeSpeechRequest{Text: string(narration)})
	if err != nil {
		s.logger.ErrorWithFields(err, "Speech backend request failed", fields)
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrSynthesisFailed, err)
	}
	defer func(stream io.ReadCloser) {
		if err := stream.Close(); err != nil {
			s.logger.ErrorWithFields(err, "Failed to close speech stream", fields)
		}
	}(stream)

	staged, err := s.store.Stage(id, domain.AudioSuffix)
	if err != nil {
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrStoreWriteFailed, err)
	}

	written, err := io.Copy(staged, stream)
	if err != nil {
		s.discard(staged, fields)
		s.logger.ErrorWithFields(err, "Failed to receive synthesized audio", fields)
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrSynthesisFailed, err)
	}
	if written == 0 {
		s.discard(staged, fields)
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrSynthesisFailed, domain.ErrEmptyAudio)
	}

	duration, err := s.prober.ProbeDuration(ctx, staged.Path())
	if err != nil {
		s.discard(staged, fields)
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrSynthesisFailed, err)
	}

	fields["duration_seconds"] = duration
	fields["bytes"] = written

	if !id.OutputType.WantsAudio() {
		audio := &domain.NarrationAudio{Path: staged.Path(), DurationSeconds: duration, Staged: true}
		s.staged.Store(audio.Path, staged)
		s.logger.DebugWithFields("Narration audio staged for rendering", fields)
		return audio, nil
	}

	if err := staged.Commit(); err != nil {
		s.logger.ErrorWithFields(err, "Failed to publish narration audio", fields)
		return nil, domain.NewStageError(domain.JobStateSynthesizing, domain.ErrStoreWriteFailed, err)
	}

	s.logger.InfoWithFields("Narration audio written", fields)
	return &domain.NarrationAudio{Path: staged.FinalPath(), DurationSeconds: duration}, nil
}

func (s *speechSynthesizer) Release(audio *domain.NarrationAudio) {
	if audio == nil || !audio.Staged {
		return
	}
	value, ok := s.staged.LoadAndDelete(audio.Path)
	if !ok {
		return
	}
	s.discard(value.(outbound.StagedArtifact), map[string]interface{}{"path": audio.Path})
}

func (s *speechSynthesizer) discard(staged outbound.StagedArtifact, fields map[string]interface{}) {
	if err := staged.Discard(); err != nil {
		s.logger.ErrorWithFields(err, "Failed to discard staged audio", fields)
	}
}
