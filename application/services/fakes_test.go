package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"weaveit-pipeline/application/ports/inbound"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/infrastructure/adapters"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
)

type fakeEnhancer struct {
	text  string
	err   error
	delay time.Duration
	calls atomic.Int32

	mu          sync.Mutex
	inFlight    map[string]int
	maxInFlight int
}

func (f *fakeEnhancer) Enhance(_ context.Context, req outbound.EnhanceScriptRequest) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	if f.inFlight == nil {
		f.inFlight = map[string]int{}
	}
	f.inFlight[req.Title]++
	if f.inFlight[req.Title] > f.maxInFlight {
		f.maxInFlight = f.inFlight[req.Title]
	}
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.inFlight[req.Title]--
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return "Narrated: " + req.Script, nil
}

type fakeSpeechBackend struct {
	payload []byte
	err     error
	calls   atomic.Int32
}

func (f *fakeSpeechBackend) Synthesize(_ context.Context, _ outbound.SynthesizeSpeechRequest) (io.ReadCloser, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.payload)), nil
}

type fakeProber struct {
	duration float64
	err      error
}

func (f *fakeProber) ProbeDuration(_ context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	return f.duration, f.err
}

type fakeEncoder struct {
	err   error
	delay time.Duration
	// onEncode runs before the encoder touches its inputs.
	onEncode func()

	mu          sync.Mutex
	requests    []outbound.EncodeVideoRequest
	audioSeen   []bool
	texts       []string
	inFlight    int
	maxInFlight int
}

func (f *fakeEncoder) Encode(_ context.Context, req outbound.EncodeVideoRequest) error {
	if f.onEncode != nil {
		f.onEncode()
	}
	_, statErr := os.Stat(req.AudioPath)
	text, _ := os.ReadFile(req.TextFilePath)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.audioSeen = append(f.audioSeen, statErr == nil)
	f.texts = append(f.texts, string(text))
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.OutputPath, []byte("mp4-bytes"), 0o644)
}

func (f *fakeEncoder) lastRequest(t *testing.T) outbound.EncodeVideoRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type fakeMetrics struct {
	mu       sync.Mutex
	started  int
	finished map[domain.JobState]int
	stages   []domain.JobState
}

func (f *fakeMetrics) ObserveStage(stage domain.JobState, _ domain.OutputType, _ time.Duration, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
}

func (f *fakeMetrics) JobFinished(_ domain.OutputType, state domain.JobState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished == nil {
		f.finished = map[domain.JobState]int{}
	}
	f.finished[state]++
}

func (f *fakeMetrics) JobStarted(_ domain.OutputType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

type fakeLedger struct {
	mu     sync.Mutex
	events []outbound.JobEvent
}

func (f *fakeLedger) Record(_ context.Context, event outbound.JobEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLedger) states() []domain.JobState {
	f.mu.Lock()
	defer f.mu.Unlock()
	states := make([]domain.JobState, 0, len(f.events))
	for _, e := range f.events {
		states = append(states, e.State)
	}
	return states
}

type fakeMirror struct {
	mu       sync.Mutex
	requests []outbound.MirrorArtifactRequest
}

func (f *fakeMirror) Mirror(_ context.Context, req outbound.MirrorArtifactRequest) (*outbound.MirrorArtifactResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &outbound.MirrorArtifactResponse{Key: req.ContentID.FileName(req.Suffix)}, nil
}

type testPipeline struct {
	store        *adapters.FileContentStore
	enhancer     *fakeEnhancer
	backend      *fakeSpeechBackend
	prober       *fakeProber
	encoder      *fakeEncoder
	metrics      *fakeMetrics
	ledger       *fakeLedger
	mirror       *fakeMirror
	orchestrator inbound.ContentJobOrchestratorPort
	poller       inbound.StatusPollerPort
}

func testLogger() outbound.LoggerPort {
	return adapters.NewZerologWrapper(&config.LoggerConfig{Level: "error"})
}

func newTestStore(t *testing.T) *adapters.FileContentStore {
	t.Helper()
	store, err := adapters.NewFileContentStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	return store
}

func newPool(t *testing.T, size int) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(size)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	return pool
}

func newTestPipeline(t *testing.T, renderConcurrency int) *testPipeline {
	t.Helper()
	logger := testLogger()

	p := &testPipeline{
		store:    newTestStore(t),
		enhancer: &fakeEnhancer{},
		backend:  &fakeSpeechBackend{payload: []byte("ID3-audio")},
		prober:   &fakeProber{duration: 6.0},
		encoder:  &fakeEncoder{},
		metrics:  &fakeMetrics{},
		ledger:   &fakeLedger{},
		mirror:   &fakeMirror{},
	}

	cfg := config.DefaultRendererConfig()
	writer := NewNarrationWriter(logger, p.enhancer)
	synthesizer := NewSpeechSynthesizer(logger, p.backend, p.prober, p.store)
	renderer := NewScrollVideoRenderer(logger, p.encoder, p.store, cfg)

	p.orchestrator = NewContentJobOrchestrator(logger, writer, synthesizer, renderer, p.store,
		newPool(t, 16), newPool(t, 4), newPool(t, renderConcurrency), p.metrics, p.ledger, p.mirror)
	p.poller = NewStatusPoller(p.store, "/api/videos")

	return p
}

func mustContentID(t *testing.T, raw string) domain.ContentID {
	t.Helper()
	id, err := domain.ParseContentID(raw)
	require.NoError(t, err)
	return id
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

type heldDispatcher struct {
	mu    sync.Mutex
	tasks []func()
	err   error
}

func (d *heldDispatcher) Submit(task func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *heldDispatcher) Running() int {
	return 0
}

func (d *heldDispatcher) Cap() int {
	return 1
}
