package config

import (
	"fmt"
	"os"
	"weaveit-pipeline/domain"

	"gopkg.in/yaml.v3"
)

type RendererConfig struct {
	FFmpegPath           string  `yaml:"ffmpeg_path"`
	FFprobePath          string  `yaml:"ffprobe_path"`
	FPS                  int     `yaml:"fps"`
	Width                int     `yaml:"width"`
	Height               int     `yaml:"height"`
	FontFile             string  `yaml:"font_file"`
	FontSize             int     `yaml:"font_size"`
	FontColor            string  `yaml:"font_color"`
	BackgroundColor      string  `yaml:"background_color"`
	LineHeight           int     `yaml:"line_height"`
	MaxCharsPerLine      int     `yaml:"max_chars_per_line"`
	TopPadding           int     `yaml:"top_padding"`
	BottomPadding        int     `yaml:"bottom_padding"`
	LeftPadding          int     `yaml:"left_padding"`
	MinDurationSeconds   float64 `yaml:"min_duration_seconds"`
	ReadableSpeedCeiling float64 `yaml:"readable_speed_ceiling"`
	VideoCodec           string  `yaml:"video_codec"`
	Preset               string  `yaml:"preset"`
	AudioBitrate         string  `yaml:"audio_bitrate"`
}

func DefaultRendererConfig() *RendererConfig {
	return &RendererConfig{
		FFmpegPath:           "ffmpeg",
		FFprobePath:          "ffprobe",
		FPS:                  25,
		Width:                1280,
		Height:               720,
		FontSize:             32,
		FontColor:            "white",
		BackgroundColor:      "0x101018",
		LineHeight:           44,
		MaxCharsPerLine:      60,
		TopPadding:           80,
		BottomPadding:        80,
		LeftPadding:          80,
		MinDurationSeconds:   1.0,
		ReadableSpeedCeiling: 120,
		VideoCodec:           "libx264",
		Preset:               "veryfast",
		AudioBitrate:         "192k",
	}
}

// GetRendererConfig starts from the defaults, applies RENDER_CONFIG_FILE when
// set and then individual RENDER_* variables.
func GetRendererConfig() (*RendererConfig, error) {
	cfg := DefaultRendererConfig()

	if path := os.Getenv("RENDER_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *RendererConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read render config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse render config %s: %w", path, err)
	}
	return nil
}

func (c *RendererConfig) applyEnv() error {
	var err error
	c.FFmpegPath = getEnvOrDefault("FFMPEG_PATH", c.FFmpegPath)
	c.FFprobePath = getEnvOrDefault("FFPROBE_PATH", c.FFprobePath)
	c.FontFile = getEnvOrDefault("RENDER_FONT_FILE", c.FontFile)
	if c.FPS, err = getIntEnv("RENDER_FPS", c.FPS); err != nil {
		return err
	}
	if c.Width, err = getIntEnv("RENDER_WIDTH", c.Width); err != nil {
		return err
	}
	if c.Height, err = getIntEnv("RENDER_HEIGHT", c.Height); err != nil {
		return err
	}
	if c.MinDurationSeconds, err = getFloatEnv("RENDER_MIN_DURATION_SECONDS", c.MinDurationSeconds); err != nil {
		return err
	}
	return nil
}

func (c *RendererConfig) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("render fps must be positive")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("render size must be positive")
	}
	if c.LineHeight <= 0 || c.MaxCharsPerLine <= 0 {
		return fmt.Errorf("line height and max chars per line must be positive")
	}
	if c.MinDurationSeconds <= 0 {
		return fmt.Errorf("minimum duration must be positive")
	}
	return nil
}

func (c *RendererConfig) Layout() domain.LayoutConfig {
	return domain.LayoutConfig{
		ViewportWidth:   c.Width,
		ViewportHeight:  c.Height,
		LineHeight:      c.LineHeight,
		MaxCharsPerLine: c.MaxCharsPerLine,
		TopPadding:      c.TopPadding,
		BottomPadding:   c.BottomPadding,
	}
}
