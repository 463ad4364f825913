package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/lock_utils"
)

const stagedFileSuffix = ".part"

// FileContentStore keeps every artifact as {contentId}.{suffix} in one flat
// directory. Writers go through a hidden staged file in the same directory and
// publish it with a rename, so readers only ever see complete files.
type FileContentStore struct {
	baseDir   string
	logger    outbound.LoggerPort
	fileLocks lock_utils.KeyedMutex
	// live holds the names of staged files owned by this process.
	live sync.Map
}

func NewFileContentStore(baseDir string, logger outbound.LoggerPort) (*FileContentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", baseDir, err)
	}
	return &FileContentStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

func (s *FileContentStore) BaseDir() string {
	return s.baseDir
}

func (s *FileContentStore) lockFile(fullPath string) func() {
	return s.fileLocks.Lock(fullPath)
}

func (s *FileContentStore) pathOf(id domain.ContentID, suffix string) string {
	return filepath.Join(s.baseDir, id.FileName(suffix))
}

func (s *FileContentStore) Stage(id domain.ContentID, suffix string) (outbound.StagedArtifact, error) {
	file, err := os.CreateTemp(s.baseDir, "."+id.Value+"-*."+suffix+stagedFileSuffix)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to create staged file", map[string]interface{}{
			"content_id": id.Value,
			"suffix":     suffix,
		})
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}
	s.live.Store(filepath.Base(file.Name()), struct{}{})

	return &stagedFile{
		store:     s,
		file:      file,
		finalPath: s.pathOf(id, suffix),
	}, nil
}

func (s *FileContentStore) Write(ctx context.Context, id domain.ContentID, suffix string, r io.Reader) error {
	staged, err := s.Stage(id, suffix)
	if err != nil {
		return err
	}

	if _, err := io.Copy(staged, readerWithContext{ctx: ctx, r: r}); err != nil {
		discardErr := staged.Discard()
		if discardErr != nil {
			s.logger.Error(discardErr, "Failed to discard staged file")
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}

	return staged.Commit()
}

func (s *FileContentStore) Exists(id domain.ContentID, suffix string) bool {
	info, err := os.Stat(s.pathOf(id, suffix))
	return err == nil && info.Mode().IsRegular()
}

func (s *FileContentStore) Open(id domain.ContentID, suffix string) (outbound.ArtifactReader, error) {
	file, err := os.Open(s.pathOf(id, suffix))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id.FileName(suffix))
		}
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &artifactFile{File: file, info: info}, nil
}

func (s *FileContentStore) Remove(id domain.ContentID, suffix string) error {
	fullPath := s.pathOf(id, suffix)
	unlock := s.lockFile(fullPath)
	defer unlock()

	err := os.Remove(fullPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

func (s *FileContentStore) MarkFailed(id domain.ContentID, marker domain.FailureMarker) error {
	payload, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	return s.Write(context.Background(), id, domain.FailedSuffix, strings.NewReader(string(payload)))
}

func (s *FileContentStore) FailureOf(id domain.ContentID) (*domain.FailureMarker, bool) {
	payload, err := os.ReadFile(s.pathOf(id, domain.FailedSuffix))
	if err != nil {
		return nil, false
	}

	var marker domain.FailureMarker
	if err := json.Unmarshal(payload, &marker); err != nil {
		s.logger.WarnWithFields("Unreadable failure marker", map[string]interface{}{
			"content_id": id.Value,
		})
		marker = domain.FailureMarker{ContentID: id.Value, Stage: domain.JobStateFailed, Message: "generation failed"}
	}
	return &marker, true
}

func (s *FileContentStore) ClearFailure(id domain.ContentID) error {
	return s.Remove(id, domain.FailedSuffix)
}

// SweepStale removes staged files abandoned by a crashed process. Files still
// owned by a live stage or commit in this process are skipped at any age.
func (s *FileContentStore) SweepStale(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, stagedFileSuffix) {
			continue
		}
		if _, owned := s.live.Load(name); owned {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.ErrorWithFields(err, "Failed to remove stale staged file", map[string]interface{}{
				"file": name,
			})
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.InfoWithFields("Removed stale staged files", map[string]interface{}{
			"count": removed,
		})
	}
	return removed, nil
}

type stagedFile struct {
	store     *FileContentStore
	file      *os.File
	finalPath string

	mu   sync.Mutex
	done bool
}

func (f *stagedFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

func (f *stagedFile) Path() string {
	return f.file.Name()
}

func (f *stagedFile) FinalPath() string {
	return f.finalPath
}

func (f *stagedFile) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return nil
	}
	f.done = true

	tempPath := f.file.Name()
	defer f.store.live.Delete(filepath.Base(tempPath))
	if err := f.file.Sync(); err != nil {
		_ = f.file.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}
	if err := f.file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}

	unlock := f.store.lockFile(f.finalPath)
	defer unlock()

	if err := os.Rename(tempPath, f.finalPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			f.store.logger.Error(removeErr, "Failed to clean up staged file after rename failure")
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}

	return nil
}

func (f *stagedFile) Discard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return nil
	}
	f.done = true
	defer f.store.live.Delete(filepath.Base(f.file.Name()))

	_ = f.file.Close()
	err := os.Remove(f.file.Name())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type artifactFile struct {
	*os.File
	info os.FileInfo
}

func (a *artifactFile) Name() string {
	return a.info.Name()
}

func (a *artifactFile) ModTime() time.Time {
	return a.info.ModTime()
}

func (a *artifactFile) Size() int64 {
	return a.info.Size()
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
