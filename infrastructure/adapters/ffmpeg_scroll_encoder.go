package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"
)

type ffmpegScrollEncoder struct {
	logger outbound.LoggerPort
	cfg    *config.RendererConfig
}

func NewFFmpegScrollEncoder(cfg *config.RendererConfig, logger outbound.LoggerPort) outbound.VideoEncoderPort {
	return &ffmpegScrollEncoder{
		logger: logger,
		cfg:    cfg,
	}
}

func (e *ffmpegScrollEncoder) Encode(ctx context.Context, req outbound.EncodeVideoRequest) error {
	args := e.buildArgs(req)
	e.logger.Debug("ffmpeg " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.ErrorWithFields(err, "error rendering scrolling video", map[string]interface{}{
			"output": req.OutputPath,
			"stderr": lastLines(stderr.String(), 5),
		})
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// buildArgs renders a solid background for exactly the requested duration and
// slides the text column up by min(v*t, distance) pixels.
func (e *ffmpegScrollEncoder) buildArgs(req outbound.EncodeVideoRequest) []string {
	duration := formatSeconds(req.DurationSeconds)
	fps := strconv.Itoa(e.cfg.FPS)

	background := fmt.Sprintf("color=c=%s:s=%dx%d:r=%s:d=%s",
		e.cfg.BackgroundColor, e.cfg.Width, e.cfg.Height, fps, duration)

	drawtext := []string{
		"textfile=" + quoteFilterValue(req.TextFilePath),
		"expansion=none",
		"fontcolor=" + e.cfg.FontColor,
		"fontsize=" + strconv.Itoa(e.cfg.FontSize),
		"line_spacing=" + strconv.Itoa(max(e.cfg.LineHeight-e.cfg.FontSize, 0)),
		"x=" + strconv.Itoa(e.cfg.LeftPadding),
		"y=" + quoteFilterValue(scrollExpression(e.cfg.TopPadding, req.Velocity, req.ScrollDistance)),
	}
	if e.cfg.FontFile != "" {
		drawtext = append(drawtext, "fontfile="+quoteFilterValue(e.cfg.FontFile))
	}

	filters := []string{"[0:v]drawtext=" + strings.Join(drawtext, ":") + ",format=yuv420p[v]"}
	audioMap := "1:a"
	if req.PadAudio {
		filters = append(filters, "[1:a]apad[a]")
		audioMap = "[a]"
	}

	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", background,
		"-i", req.AudioPath,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[v]", "-map", audioMap,
		"-c:v", e.cfg.VideoCodec, "-preset", e.cfg.Preset, "-r", fps,
		"-c:a", "aac", "-b:a", e.cfg.AudioBitrate,
		"-t", duration,
		"-movflags", "+faststart",
		"-f", "mp4",
		req.OutputPath,
	}
}

func scrollExpression(topPadding int, velocity float64, distance float64) string {
	if distance <= 0 || velocity <= 0 {
		return strconv.Itoa(topPadding)
	}
	return fmt.Sprintf("%d-min(%s*t,%s)", topPadding,
		strconv.FormatFloat(velocity, 'f', 6, 64), strconv.FormatFloat(distance, 'f', 3, 64))
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func quoteFilterValue(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
