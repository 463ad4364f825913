package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentID_DerivesOutputTypeFromPrefix(t *testing.T) {
	cases := map[string]OutputType{
		"audio_abc":  AudioOutputType,
		"video_42":   VideoOutputType,
		"both_7":     BothOutputType,
		"plain-id":   VideoOutputType,
		"audiofile1": VideoOutputType,
	}

	for raw, expected := range cases {
		id, err := ParseContentID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, id.OutputType, raw)
		assert.Equal(t, raw, id.String())
	}
}

func TestParseContentID_RejectsUnsafeValues(t *testing.T) {
	for _, raw := range []string{"", "../etc/passwd", "video_42/../x", "a b", "_leading", ".hidden", strings.Repeat("a", 129)} {
		_, err := ParseContentID(raw)
		assert.ErrorIs(t, err, ErrInvalidContentID, raw)
	}
}

func TestNewContentID(t *testing.T) {
	id, err := NewContentID(BothOutputType, "sig123")
	require.NoError(t, err)
	assert.Equal(t, "both_sig123", id.Value)
	assert.Equal(t, BothOutputType, id.OutputType)
	assert.Equal(t, "both_sig123.mp4", id.FileName(VideoSuffix))
}

func TestOutputType_Suffixes(t *testing.T) {
	assert.Equal(t, []string{"mp3"}, AudioOutputType.Suffixes())
	assert.Equal(t, []string{"mp4"}, VideoOutputType.Suffixes())
	assert.Equal(t, []string{"mp3", "mp4"}, BothOutputType.Suffixes())
}

func TestParseOutputType(t *testing.T) {
	outputType, err := ParseOutputType(" Both ")
	require.NoError(t, err)
	assert.Equal(t, BothOutputType, outputType)

	outputType, err = ParseOutputType("")
	require.NoError(t, err)
	assert.Equal(t, VideoOutputType, outputType)

	_, err = ParseOutputType("gif")
	assert.ErrorIs(t, err, ErrInvalidOutputType)
}

func TestResolveContentID(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		output    string
		signature string
		want      ContentID
		wantErr   error
	}{
		{name: "requested id keeps its prefix", requested: "both_7", want: ContentID{Value: "both_7", OutputType: BothOutputType}},
		{name: "requested id agrees with type", requested: "audio_1", output: "audio", want: ContentID{Value: "audio_1", OutputType: AudioOutputType}},
		{name: "requested id disagrees with type", requested: "audio_1", output: "video", wantErr: ErrOutputTypeMismatch},
		{name: "unsafe requested id", requested: "../x", wantErr: ErrInvalidContentID},
		{name: "payment signature", output: "both", signature: "5xSig", want: ContentID{Value: "both_5xSig", OutputType: BothOutputType}},
		{name: "fallback token", output: "", want: ContentID{Value: "video_token", OutputType: VideoOutputType}},
		{name: "unknown type", output: "gif", wantErr: ErrInvalidOutputType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ResolveContentID(tt.requested, tt.output, tt.signature, "token")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestEstimateNarrationMinutes(t *testing.T) {
	assert.Equal(t, 0, EstimateNarrationMinutes("   "))
	assert.Equal(t, 1, EstimateNarrationMinutes("one two three"))
	assert.Equal(t, 1, EstimateNarrationMinutes(strings.Repeat("word ", 150)))
	assert.Equal(t, 2, EstimateNarrationMinutes(strings.Repeat("word ", 151)))
}

func TestRateScript(t *testing.T) {
	assert.Equal(t, ScriptQualityTooShort, RateScript(strings.Repeat("w ", 49)))
	assert.Equal(t, ScriptQualityGood, RateScript(strings.Repeat("w ", 50)))
	assert.Equal(t, ScriptQualityExcellent, RateScript(strings.Repeat("w ", 150)))
	assert.Equal(t, ScriptQualityVeryLong, RateScript(strings.Repeat("w ", 500)))
}

func TestStageError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := fmt.Errorf("job failed: %w", NewStageError(JobStateEnhancing, ErrEnhancementFailed, cause))

	assert.ErrorIs(t, err, ErrEnhancementFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRenderFailed)
	assert.Equal(t, JobStateEnhancing, StageOf(err, JobStateDone))
	assert.Equal(t, JobStateRendering, StageOf(cause, JobStateRendering))
	assert.Contains(t, err.Error(), "enhancing: enhancement failed: 429")
}
