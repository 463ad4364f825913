package outbound

import (
	"context"
	"io"
	"time"
	"weaveit-pipeline/domain"
)

// StagedArtifact is a hidden temp file in the store directory. Commit renames it
// onto its final name, Discard removes it. Both are safe to call after the other.
type StagedArtifact interface {
	io.Writer
	Path() string
	FinalPath() string
	Commit() error
	Discard() error
}

type ArtifactReader interface {
	io.ReadSeekCloser
	Name() string
	ModTime() time.Time
	Size() int64
}

type ContentStorePort interface {
	Stage(id domain.ContentID, suffix string) (StagedArtifact, error)
	Write(ctx context.Context, id domain.ContentID, suffix string, r io.Reader) error
	Exists(id domain.ContentID, suffix string) bool
	Open(id domain.ContentID, suffix string) (ArtifactReader, error)
	Remove(id domain.ContentID, suffix string) error
	MarkFailed(id domain.ContentID, marker domain.FailureMarker) error
	FailureOf(id domain.ContentID) (*domain.FailureMarker, bool)
	ClearFailure(id domain.ContentID) error
}
