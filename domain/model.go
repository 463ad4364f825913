package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

type OutputType string

const (
	AudioOutputType OutputType = "audio"
	VideoOutputType OutputType = "video"
	BothOutputType  OutputType = "both"
)

const (
	AudioSuffix  = "mp3"
	VideoSuffix  = "mp4"
	FailedSuffix = "failed"
)

func ParseOutputType(value string) (OutputType, error) {
	switch OutputType(strings.ToLower(strings.TrimSpace(value))) {
	case AudioOutputType:
		return AudioOutputType, nil
	case VideoOutputType, "":
		return VideoOutputType, nil
	case BothOutputType:
		return BothOutputType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutputType, value)
}

// Suffixes lists the artifact suffixes a completed job of this type exposes.
func (o OutputType) Suffixes() []string {
	switch o {
	case AudioOutputType:
		return []string{AudioSuffix}
	case BothOutputType:
		return []string{AudioSuffix, VideoSuffix}
	default:
		return []string{VideoSuffix}
	}
}

func (o OutputType) WantsAudio() bool {
	return o == AudioOutputType || o == BothOutputType
}

func (o OutputType) WantsVideo() bool {
	return o == VideoOutputType || o == BothOutputType
}

const maxContentIDLength = 128

var contentIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ContentID is the content address of a job. The output type travels with the
// value so it is derived from the prefix exactly once.
type ContentID struct {
	Value      string
	OutputType OutputType
}

func ParseContentID(raw string) (ContentID, error) {
	if len(raw) == 0 || len(raw) > maxContentIDLength || !contentIDPattern.MatchString(raw) {
		return ContentID{}, fmt.Errorf("%w: %q", ErrInvalidContentID, raw)
	}

	outputType := VideoOutputType
	switch {
	case strings.HasPrefix(raw, string(AudioOutputType)+"_"):
		outputType = AudioOutputType
	case strings.HasPrefix(raw, string(BothOutputType)+"_"):
		outputType = BothOutputType
	}

	return ContentID{Value: raw, OutputType: outputType}, nil
}

// NewContentID builds "{outputType}_{token}".
func NewContentID(outputType OutputType, token string) (ContentID, error) {
	return ParseContentID(string(outputType) + "_" + token)
}

// ResolveContentID picks the id for a new job. A requested id must agree with
// the requested output type; otherwise the id is built from the payment
// signature, or from fallbackToken when there is none.
func ResolveContentID(requested string, outputType string, paymentSignature string, fallbackToken string) (ContentID, error) {
	if requested != "" {
		id, err := ParseContentID(requested)
		if err != nil {
			return ContentID{}, err
		}
		if strings.TrimSpace(outputType) == "" {
			return id, nil
		}
		parsed, err := ParseOutputType(outputType)
		if err != nil {
			return ContentID{}, err
		}
		if parsed != id.OutputType {
			return ContentID{}, fmt.Errorf("%w: %q is not %s", ErrOutputTypeMismatch, requested, parsed)
		}
		return id, nil
	}

	parsed, err := ParseOutputType(outputType)
	if err != nil {
		return ContentID{}, err
	}
	token := strings.TrimSpace(paymentSignature)
	if token == "" {
		token = fallbackToken
	}
	return NewContentID(parsed, token)
}

func (c ContentID) String() string {
	return c.Value
}

func (c ContentID) FileName(suffix string) string {
	return c.Value + "." + suffix
}

type DisplayScript string

type NarrationText string

type ContentJob struct {
	ID     ContentID
	Title  string
	Script DisplayScript
}

// NarrationAudio is the synthesized speech for a job. Staged audio lives in a
// hidden temp file and is never exposed to readers.
type NarrationAudio struct {
	Path            string
	DurationSeconds float64
	Staged          bool
}

type VideoArtifact struct {
	Path            string
	DurationSeconds float64
}

type JobState string

const (
	JobStateEnhancing    JobState = "enhancing"
	JobStateSynthesizing JobState = "synthesizing"
	JobStateRendering    JobState = "rendering"
	JobStateDone         JobState = "done"
	JobStateFailed       JobState = "failed"
)

type JobResult struct {
	ContentID   ContentID
	State       JobState
	FailedStage JobState
	Audio       *NarrationAudio
	Video       *VideoArtifact
	Err         error
}

type StatusValue string

const (
	StatusProcessing StatusValue = "processing"
	StatusCompleted  StatusValue = "completed"
	StatusFailed     StatusValue = "failed"
)

type ContentStatus struct {
	ContentID  string      `json:"contentId"`
	OutputType OutputType  `json:"outputType"`
	Status     StatusValue `json:"status"`
	Ready      bool        `json:"ready"`
	ContentURL string      `json:"contentUrl,omitempty"`
	AudioURL   string      `json:"audioUrl,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type FailureMarker struct {
	ContentID string   `json:"contentId"`
	Stage     JobState `json:"stage"`
	Message   string   `json:"message"`
	FailedAt  int64    `json:"failedAt"`
}

const narrationWordsPerMinute = 150

func CountWords(script string) int {
	return len(strings.Fields(script))
}

// EstimateNarrationMinutes is a preview figure only. Rendering always uses the
// measured audio duration.
func EstimateNarrationMinutes(script string) int {
	words := CountWords(script)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / narrationWordsPerMinute))
}

type ScriptQuality string

const (
	ScriptQualityTooShort  ScriptQuality = "too short"
	ScriptQualityGood      ScriptQuality = "good"
	ScriptQualityExcellent ScriptQuality = "excellent"
	ScriptQualityVeryLong  ScriptQuality = "very long"
)

func RateScript(script string) ScriptQuality {
	words := CountWords(script)
	switch {
	case words < 50:
		return ScriptQualityTooShort
	case words < 150:
		return ScriptQualityGood
	case words < 500:
		return ScriptQualityExcellent
	default:
		return ScriptQualityVeryLong
	}
}
