package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/application/services"
	"weaveit-pipeline/config"
	"weaveit-pipeline/domain"
	"weaveit-pipeline/infrastructure/adapters"
	"weaveit-pipeline/infrastructure/gin_interface/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOrchestrator struct {
	mu        sync.Mutex
	submitted []domain.ContentJob
	err       error
}

func (f *fakeOrchestrator) Run(_ context.Context, job domain.ContentJob) *domain.JobResult {
	return &domain.JobResult{ContentID: job.ID, State: domain.JobStateDone}
}

func (f *fakeOrchestrator) Submit(_ context.Context, job domain.ContentJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, job)
	return nil
}

type fakeDispatcher struct{}

func (fakeDispatcher) Submit(task func()) error {
	task()
	return nil
}

func (fakeDispatcher) Running() int {
	return 3
}

func (fakeDispatcher) Cap() int {
	return 120
}

type testServer struct {
	router       *gin.Engine
	store        *adapters.FileContentStore
	orchestrator *fakeOrchestrator
}

func testLogger() outbound.LoggerPort {
	return adapters.NewZerologWrapper(&config.LoggerConfig{Level: "error"})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()
	store, err := adapters.NewFileContentStore(t.TempDir(), logger)
	require.NoError(t, err)
	orchestrator := &fakeOrchestrator{}

	router := gin.New()
	NewContentGenerationController(logger, orchestrator, "/status").RegisterRoutes(router)
	NewContentStatusController(logger, services.NewStatusPoller(store, "/api/videos")).RegisterRoutes(router)
	NewArtifactController(logger, services.NewArtifactReader(store)).RegisterRoutes(router)
	NewHealthController(fakeDispatcher{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})).RegisterRoutes(router)

	return &testServer{router: router, store: store, orchestrator: orchestrator}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) writeArtifact(t *testing.T, rawID, suffix, content string) {
	t.Helper()
	id, err := domain.ParseContentID(rawID)
	require.NoError(t, err)
	require.NoError(t, s.store.Write(context.Background(), id, suffix, strings.NewReader(content)))
}

func TestGenerate_AcceptsJob(t *testing.T) {
	s := newTestServer(t)
	script := strings.Repeat("word ", 160)

	w := s.do(http.MethodPost, "/api/generate",
		fmt.Sprintf(`{"script":%q,"title":"Intro","outputType":"both","paymentSignature":"5xSig"}`, script))

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var res dto.GenerateContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, dto.GenerateContentResponse{
		ContentID:        "both_5xSig",
		OutputType:       domain.BothOutputType,
		Title:            "Intro",
		StatusURL:        "/status/both_5xSig",
		EstimatedMinutes: 2,
		ScriptQuality:    domain.ScriptQualityExcellent,
	}, res)

	require.Len(t, s.orchestrator.submitted, 1)
	job := s.orchestrator.submitted[0]
	assert.Equal(t, "both_5xSig", job.ID.Value)
	assert.Equal(t, domain.DisplayScript(script), job.Script)
}

func TestGenerate_DefaultsToVideoWithGeneratedID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/generate", `{"script":"Hello world. This is a demo."}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	var res dto.GenerateContentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.ContentID, "video_"))
	assert.Equal(t, res.ContentID, res.Title)
	assert.Equal(t, domain.ScriptQualityTooShort, res.ScriptQuality)
}

func TestGenerate_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"script":`},
		{name: "missing script", body: `{"title":"x"}`},
		{name: "blank script", body: `{"script":"   "}`},
		{name: "unknown output type", body: `{"script":"x","outputType":"gif"}`},
		{name: "prefix mismatch", body: `{"script":"x","outputType":"video","contentId":"audio_1"}`},
		{name: "unsafe id", body: `{"script":"x","contentId":"../../etc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(http.MethodPost, "/api/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Empty(t, s.orchestrator.submitted)
		})
	}
}

func TestGenerate_PoolOverloaded(t *testing.T) {
	s := newTestServer(t)
	s.orchestrator.err = fmt.Errorf("%w: too many goroutines", domain.ErrPoolOverloaded)

	w := s.do(http.MethodPost, "/api/generate", `{"script":"x"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEstimate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/estimate", `{"script":"one two three"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"words":3,"estimatedMinutes":1,"scriptQuality":"too short"}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	s.writeArtifact(t, "both_7", domain.AudioSuffix, "audio")

	w := s.do(http.MethodGet, "/status/both_7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contentId":"both_7","outputType":"both","status":"processing","ready":false,
		"audioUrl":"/api/videos/both_7.mp3"}`, w.Body.String())

	s.writeArtifact(t, "both_7", domain.VideoSuffix, "video")

	w = s.do(http.MethodGet, "/api/videos/status/both_7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contentId":"both_7","outputType":"both","status":"completed","ready":true,
		"contentUrl":"/api/videos/both_7.mp4","audioUrl":"/api/videos/both_7.mp3"}`, w.Body.String())
}

func TestStatus_Failed(t *testing.T) {
	s := newTestServer(t)
	id, err := domain.ParseContentID("video_9")
	require.NoError(t, err)
	require.NoError(t, s.store.MarkFailed(id, domain.FailureMarker{ContentID: "video_9", Stage: domain.JobStateRendering,
		Message: domain.ErrRenderFailed.Error()}))

	w := s.do(http.MethodGet, "/status/video_9", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contentId":"video_9","outputType":"video","status":"failed","ready":false,"error":"render failed"}`,
		w.Body.String())
}

func TestStatus_InvalidID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/status/bad!id", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArtifact_ServesMediaWithRanges(t *testing.T) {
	s := newTestServer(t)
	s.writeArtifact(t, "video_42", domain.VideoSuffix, "0123456789")

	w := s.do(http.MethodGet, "/api/videos/video_42.mp4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "0123456789", w.Body.String())

	w = s.do(http.MethodGet, "/api/videos/video_42.mp4", "", "Range", "bytes=2-4")
	require.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "234", w.Body.String())

	w = s.do(http.MethodHead, "/api/videos/video_42.mp4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("Content-Length"))
	assert.Empty(t, w.Body.String())
}

func TestArtifact_AudioContentType(t *testing.T) {
	s := newTestServer(t)
	s.writeArtifact(t, "audio_1", domain.AudioSuffix, "ID3")

	w := s.do(http.MethodGet, "/api/videos/audio_1.mp3", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
}

func TestArtifact_NotFound(t *testing.T) {
	s := newTestServer(t)
	s.writeArtifact(t, "video_1", domain.VideoSuffix, "x")
	id, err := domain.ParseContentID("video_1")
	require.NoError(t, err)
	require.NoError(t, s.store.MarkFailed(id, domain.FailureMarker{ContentID: "video_1"}))

	for _, path := range []string{"/api/videos/video_2.mp4", "/api/videos/video_1.failed", "/api/videos/video_1.txt"} {
		w := s.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"error":"content not found"}`, w.Body.String(), path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","runningJobs":3,"jobCapacity":120}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())
}
