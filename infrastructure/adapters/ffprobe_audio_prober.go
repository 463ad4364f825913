package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"weaveit-pipeline/application/ports/outbound"
)

type ffprobeAudioProber struct {
	logger      outbound.LoggerPort
	ffprobePath string
}

func NewFFprobeAudioProber(ffprobePath string, logger outbound.LoggerPort) outbound.AudioProberPort {
	return &ffprobeAudioProber{
		logger:      logger,
		ffprobePath: ffprobePath,
	}
}

func (p *ffprobeAudioProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		p.logger.ErrorWithFields(err, "error getting audio duration", map[string]interface{}{
			"path":   path,
			"stderr": strings.TrimSpace(stderr.String()),
		})
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	duration, err := parseProbedDuration(string(out))
	if err != nil {
		p.logger.ErrorWithFields(err, "error parsing audio duration", map[string]interface{}{
			"path": path,
		})
		return 0, err
	}

	return duration, nil
}

func parseProbedDuration(out string) (float64, error) {
	value := strings.TrimSpace(out)
	if value == "" || value == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %v", duration)
	}
	return duration, nil
}
