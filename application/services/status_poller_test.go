package services

import (
	"context"
	"strings"
	"testing"
	"weaveit-pipeline/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPoller_Status(t *testing.T) {
	tests := []struct {
		name      string
		contentID string
		files     []string
		failed    bool
		want      domain.ContentStatus
	}{
		{
			name:      "video still processing",
			contentID: "video_1",
			want:      domain.ContentStatus{ContentID: "video_1", OutputType: domain.VideoOutputType, Status: domain.StatusProcessing},
		},
		{
			name:      "unprefixed id defaults to video",
			contentID: "abc123",
			files:     []string{domain.VideoSuffix},
			want: domain.ContentStatus{ContentID: "abc123", OutputType: domain.VideoOutputType, Status: domain.StatusCompleted,
				Ready: true, ContentURL: "/api/videos/abc123.mp4"},
		},
		{
			name:      "audio ready",
			contentID: "audio_1",
			files:     []string{domain.AudioSuffix},
			want: domain.ContentStatus{ContentID: "audio_1", OutputType: domain.AudioOutputType, Status: domain.StatusCompleted,
				Ready: true, ContentURL: "/api/videos/audio_1.mp3"},
		},
		{
			name:      "both with only audio is still processing",
			contentID: "both_1",
			files:     []string{domain.AudioSuffix},
			want: domain.ContentStatus{ContentID: "both_1", OutputType: domain.BothOutputType, Status: domain.StatusProcessing,
				AudioURL: "/api/videos/both_1.mp3"},
		},
		{
			name:      "both ready",
			contentID: "both_1",
			files:     []string{domain.AudioSuffix, domain.VideoSuffix},
			want: domain.ContentStatus{ContentID: "both_1", OutputType: domain.BothOutputType, Status: domain.StatusCompleted,
				Ready: true, ContentURL: "/api/videos/both_1.mp4", AudioURL: "/api/videos/both_1.mp3"},
		},
		{
			name:      "failure marker wins over artifacts",
			contentID: "both_1",
			files:     []string{domain.AudioSuffix, domain.VideoSuffix},
			failed:    true,
			want: domain.ContentStatus{ContentID: "both_1", OutputType: domain.BothOutputType, Status: domain.StatusFailed,
				Error: "synthesis failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			id := mustContentID(t, tt.contentID)
			for _, suffix := range tt.files {
				require.NoError(t, store.Write(context.Background(), id, suffix, strings.NewReader("bytes")))
			}
			if tt.failed {
				require.NoError(t, store.MarkFailed(id, domain.FailureMarker{
					ContentID: id.Value,
					Stage:     domain.JobStateSynthesizing,
					Message:   domain.ErrSynthesisFailed.Error(),
				}))
			}

			status, err := NewStatusPoller(store, "/api/videos/").Status(context.Background(), tt.contentID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, *status)
		})
	}
}

func TestStatusPoller_RejectsUnsafeID(t *testing.T) {
	_, err := NewStatusPoller(newTestStore(t), "/api/videos").Status(context.Background(), "../etc/passwd")

	assert.ErrorIs(t, err, domain.ErrInvalidContentID)
}
