package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type LayoutConfig struct {
	ViewportWidth   int
	ViewportHeight  int
	LineHeight      int
	MaxCharsPerLine int
	TopPadding      int
	BottomPadding   int
}

// ScrollLayout is the display script laid out as a single column of lines.
type ScrollLayout struct {
	Lines          []string
	ContentHeight  float64
	ViewportHeight float64
	ScrollDistance float64
}

// LayoutScript wraps the script into lines no longer than MaxCharsPerLine runes.
// Blank lines are kept so paragraph breaks survive on screen. The scroll
// distance is the amount the column must move for its last line to sit
// BottomPadding above the bottom edge of the viewport; the column stops there
// and does not scroll off screen. A script that fits one viewport has zero
// distance.
func LayoutScript(script DisplayScript, cfg LayoutConfig) (ScrollLayout, error) {
	if !utf8.ValidString(string(script)) {
		return ScrollLayout{}, ErrUnsupportedEncoding
	}
	if cfg.LineHeight <= 0 || cfg.MaxCharsPerLine <= 0 || cfg.ViewportHeight <= 0 {
		return ScrollLayout{}, fmt.Errorf("invalid layout config: %+v", cfg)
	}

	text := strings.ReplaceAll(string(script), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.TrimRight(text, "\n ")

	lines := make([]string, 0)
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, cfg.MaxCharsPerLine)...)
	}

	contentHeight := float64(cfg.TopPadding + len(lines)*cfg.LineHeight + cfg.BottomPadding)
	viewport := float64(cfg.ViewportHeight)

	return ScrollLayout{
		Lines:          lines,
		ContentHeight:  contentHeight,
		ViewportHeight: viewport,
		ScrollDistance: math.Max(0, contentHeight-viewport),
	}, nil
}

func (l ScrollLayout) Text() string {
	return strings.Join(l.Lines, "\n")
}

func wrapParagraph(paragraph string, maxChars int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0)
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range words {
		for utf8.RuneCountInString(word) > maxChars {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:maxChars]))
			word = string(runes[maxChars:])
		}

		wordLen := utf8.RuneCountInString(word)
		if wordLen == 0 {
			continue
		}
		if currentLen > 0 && currentLen+1+wordLen > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()

	return lines
}

// ScrollSchedule maps playback time to the vertical offset of the text column.
type ScrollSchedule struct {
	Distance        float64
	DurationSeconds float64
	Velocity        float64
	FPS             int
	Clamped         bool
}

// NewScrollSchedule moves the column at constant speed so it covers the whole
// scroll distance over the narration. Durations under minDuration are raised to
// it so the encoder never sees an empty timeline.
func NewScrollSchedule(layout ScrollLayout, durationSeconds float64, fps int, minDuration float64) (ScrollSchedule, error) {
	if fps <= 0 {
		return ScrollSchedule{}, fmt.Errorf("invalid frame rate %d", fps)
	}
	if math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		return ScrollSchedule{}, fmt.Errorf("invalid duration %v", durationSeconds)
	}

	schedule := ScrollSchedule{
		Distance:        layout.ScrollDistance,
		DurationSeconds: durationSeconds,
		FPS:             fps,
	}
	if schedule.DurationSeconds < minDuration {
		schedule.DurationSeconds = minDuration
		schedule.Clamped = true
	}
	if schedule.DurationSeconds <= 0 {
		return ScrollSchedule{}, fmt.Errorf("non-positive duration %v", schedule.DurationSeconds)
	}
	if schedule.Distance > 0 {
		schedule.Velocity = schedule.Distance / schedule.DurationSeconds
	}

	return schedule, nil
}

func (s ScrollSchedule) OffsetAt(seconds float64) float64 {
	return math.Min(math.Max(s.Velocity*seconds, 0), s.Distance)
}

func (s ScrollSchedule) FrameCount() int {
	return int(math.Ceil(s.DurationSeconds*float64(s.FPS) - 1e-9))
}

func (s ScrollSchedule) FrameInterval() float64 {
	return 1 / float64(s.FPS)
}

func (s ScrollSchedule) Offsets() []float64 {
	frames := s.FrameCount()
	offsets := make([]float64, frames)
	for i := 0; i < frames; i++ {
		offsets[i] = s.OffsetAt(float64(i) / float64(s.FPS))
	}
	return offsets
}

// ExceedsReadableSpeed reports whether the text moves faster than ceiling
// pixels per second. Narration is never re-paced to fix this.
func (s ScrollSchedule) ExceedsReadableSpeed(ceiling float64) bool {
	return ceiling > 0 && s.Velocity > ceiling
}
