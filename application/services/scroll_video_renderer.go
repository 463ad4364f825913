package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"
	"weaveit-pipeline/domain"
)

type scrollVideoRenderer struct {
	logger  outbound.LoggerPort
	encoder outbound.VideoEncoderPort
	store   outbound.ContentStorePort
	cfg     *config.RendererConfig
}

func NewScrollVideoRenderer(logger outbound.LoggerPort, encoder outbound.VideoEncoderPort, store outbound.ContentStorePort,
	cfg *config.RendererConfig) inbound.VideoRendererPort {
	return &scrollVideoRenderer{
		logger:  logger,
		encoder: encoder,
		store:   store,
		cfg:     cfg,
	}
}

// Render lays out the display script, derives a scroll schedule from the
// narration length and encodes {id}.mp4 with the narration muxed in.
func (r *scrollVideoRenderer) Render(ctx context.Context, id domain.ContentID, script domain.DisplayScript,
	audio *domain.NarrationAudio) (*domain.VideoArtifact, error) {
	if audio == nil {
		return nil, renderFailed(errors.New("no narration audio"))
	}

	layout, err := domain.LayoutScript(script, r.cfg.Layout())
	if err != nil {
		return nil, renderFailed(err)
	}

	schedule, err := domain.NewScrollSchedule(layout, audio.DurationSeconds, r.cfg.FPS, r.cfg.MinDurationSeconds)
	if err != nil {
		return nil, renderFailed(err)
	}

	fields := map[string]interface{}{
		"content_id":       id.Value,
		"lines":            len(layout.Lines),
		"scroll_distance":  schedule.Distance,
		"velocity":         schedule.Velocity,
		"duration_seconds": schedule.DurationSeconds,
		"frames":           schedule.FrameCount(),
		"clamped":          schedule.Clamped,
	}
	if schedule.ExceedsReadableSpeed(r.cfg.ReadableSpeedCeiling) {
		r.logger.WarnWithFields("Script scrolls faster than the readable ceiling", fields)
	}

	textFile, err := r.writeTextFile(layout)
	if err != nil {
		return nil, renderFailed(err)
	}
	defer func() {
		if err := os.Remove(textFile); err != nil {
			r.logger.Error(err, "error removing script text file")
		}
	}()

	staged, err := r.store.Stage(id, domain.VideoSuffix)
	if err != nil {
		return nil, domain.NewStageError(domain.JobStateRendering, domain.ErrStoreWriteFailed, err)
	}

	err = r.encoder.Encode(ctx, outbound.EncodeVideoRequest{
		TextFilePath:    textFile,
		AudioPath:       audio.Path,
		OutputPath:      staged.Path(),
		DurationSeconds: schedule.DurationSeconds,
		ScrollDistance:  schedule.Distance,
		Velocity:        schedule.Velocity,
		PadAudio:        schedule.Clamped,
	})
	if err == nil {
		err = requireNonEmpty(staged.Path())
	}
	if err != nil {
		if discardErr := staged.Discard(); discardErr != nil {
			r.logger.Error(discardErr, "error discarding staged video")
		}
		r.logger.ErrorWithFields(err, "Video render failed", fields)
		return nil, renderFailed(err)
	}

	if err := staged.Commit(); err != nil {
		return nil, domain.NewStageError(domain.JobStateRendering, domain.ErrStoreWriteFailed, err)
	}

	r.logger.InfoWithFields("Video written", fields)
	return &domain.VideoArtifact{Path: staged.FinalPath(), DurationSeconds: schedule.DurationSeconds}, nil
}

func (r *scrollVideoRenderer) writeTextFile(layout domain.ScrollLayout) (string, error) {
	file, err := os.CreateTemp("", "weaveit-script-*.txt")
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(layout.Text()); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

func requireNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("encoder produced an empty file")
	}
	return nil
}

func renderFailed(err error) error {
	return domain.NewStageError(domain.JobStateRendering, domain.ErrRenderFailed, err)
}
