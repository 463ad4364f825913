package services

import (
	"context"
	"errors"
	"testing"
	"weaveit-pipeline/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrationWriter_Write(t *testing.T) {
	enhancer := &fakeEnhancer{text: "Here is what this script does."}
	writer := NewNarrationWriter(testLogger(), enhancer)

	narration, err := writer.Write(context.Background(), job(t, "audio_1", "console.log('hi')"))

	require.NoError(t, err)
	assert.Equal(t, domain.NarrationText("Here is what this script does."), narration)
}

func TestNarrationWriter_RejectsEmptyScript(t *testing.T) {
	enhancer := &fakeEnhancer{}
	writer := NewNarrationWriter(testLogger(), enhancer)

	_, err := writer.Write(context.Background(), job(t, "audio_1", " \n\t"))

	assert.ErrorIs(t, err, domain.ErrEnhancementFailed)
	assert.ErrorIs(t, err, domain.ErrEmptyScript)
	assert.Zero(t, enhancer.calls.Load())
}

func TestNarrationWriter_WrapsEnhancerErrors(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	writer := NewNarrationWriter(testLogger(), &fakeEnhancer{err: cause})

	_, err := writer.Write(context.Background(), job(t, "video_1", "script"))

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.JobStateEnhancing, stageErr.Stage)
	assert.ErrorIs(t, err, cause)
}
