package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEnhancementFailed = errors.New("enhancement failed")
	ErrSynthesisFailed   = errors.New("synthesis failed")
	ErrRenderFailed      = errors.New("render failed")
	ErrStoreWriteFailed  = errors.New("store write failed")
	ErrNotFound          = errors.New("not found")

	ErrInvalidContentID    = errors.New("invalid content id")
	ErrInvalidOutputType   = errors.New("invalid output type")
	ErrOutputTypeMismatch  = errors.New("content id prefix does not match output type")
	ErrEmptyScript         = errors.New("script is empty")
	ErrEmptyAudio          = errors.New("speech backend returned no audio")
	ErrUnsupportedEncoding = errors.New("script is not valid UTF-8")
	ErrPoolOverloaded      = errors.New("worker pool overloaded")
)

// StageError ties a failure to the pipeline stage that produced it. It matches
// both its Kind and its cause under errors.Is.
type StageError struct {
	Stage JobState
	Kind  error
	Err   error
}

func NewStageError(stage JobState, kind error, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StageOf reports the stage recorded on err, or fallback when err carries none.
func StageOf(err error, fallback JobState) JobState {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return fallback
}
