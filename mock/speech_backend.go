package mock_generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"sync"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
)

const wordsPerSecond = 150.0 / 60.0

type silentSpeechBackend struct {
	ffmpegPath string
	logger     outbound.LoggerPort
}

// NewSilentSpeechBackend streams an mp3 of silence lasting as long as the text
// would take to read aloud.
func NewSilentSpeechBackend(ffmpegPath string, logger outbound.LoggerPort) outbound.SpeechBackendPort {
	return &silentSpeechBackend{
		ffmpegPath: ffmpegPath,
		logger:     logger,
	}
}

func (s *silentSpeechBackend) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) (io.ReadCloser, error) {
	seconds := silenceSeconds(req.Text)
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono",
		"-t", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-c:a", "libmp3lame", "-b:a", "64k",
		"-f", "mp3", "pipe:1",
	)

	stream := &commandStream{cmd: cmd}
	cmd.Stderr = &stream.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stream.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s.logger.DebugWithFields("Generating silent narration", map[string]interface{}{
		"duration_seconds": seconds,
	})
	return stream, nil
}

func silenceSeconds(text string) float64 {
	seconds := float64(domain.CountWords(text)) / wordsPerSecond
	return math.Max(1, math.Round(seconds*10)/10)
}

// commandStream reads a command's stdout and reports a failed exit in place of
// io.EOF.
type commandStream struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	once    sync.Once
	waitErr error
}

func (c *commandStream) Read(p []byte) (int, error) {
	n, err := c.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		if waitErr := c.wait(); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

func (c *commandStream) Close() error {
	c.once.Do(func() {
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
		_ = c.cmd.Wait()
	})
	return nil
}

func (c *commandStream) wait() error {
	c.once.Do(func() {
		if err := c.cmd.Wait(); err != nil {
			c.waitErr = fmt.Errorf("ffmpeg failed: %w: %s", err, c.stderr.String())
		}
	})
	return c.waitErr
}
