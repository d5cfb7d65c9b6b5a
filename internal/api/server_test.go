package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droth0951/audio2-sub001/internal/captions"
	"github.com/droth0951/audio2-sub001/internal/service"
	"github.com/droth0951/audio2-sub001/internal/store"
	"github.com/droth0951/audio2-sub001/internal/transcription"
)

const testProviderPayload = `{
	"words": [
		{"text": "Welcome", "start": 900000, "end": 900400},
		{"text": "back", "start": 900450, "end": 900700},
		{"text": "everyone", "start": 900750, "end": 901200}
	],
	"utterances": [
		{"text": "Welcome back everyone", "start": 900000, "end": 901200, "speaker": "A"}
	]
}`

type stubTranscriber struct {
	payload []byte
	err     error
}

func (st *stubTranscriber) SubmitAudio(_ context.Context, _ string) (string, error) {
	if st.err != nil {
		return "", st.err
	}
	return "job-test", nil
}

func (st *stubTranscriber) WaitForTranscript(_ context.Context, jobID string) (*transcription.Result, error) {
	if st.err != nil {
		return nil, st.err
	}
	return &transcription.Result{
		ID:      jobID,
		Status:  transcription.StatusCompleted,
		Payload: st.payload,
	}, nil
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	clips := service.NewClipService(st, &stubTranscriber{payload: []byte(testProviderPayload)}, service.EngineOptions{}, logger)
	s := NewServer(st, clips, logger)

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		cleanup: cleanup,
	}
}

// createClip creates a clip over the API and returns its ID.
func (ts *testServer) createClip(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/clips", map[string]any{
		"audioUrl":    "https://example.com/episode.mp3",
		"clipStartMs": 900000,
		"clipEndMs":   930000,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create failed: %s", resp.Body.String())

	var clip ClipResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &clip))
	require.NotEmpty(t, clip.ID)
	return clip.ID
}

// loadClip runs the transcribe + load steps for an existing clip.
func (ts *testServer) loadClip(t *testing.T, clipID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/clips/" + clipID + "/transcribe")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/clips/" + clipID + "/load")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestCreateClipEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/clips", map[string]any{
		"audioUrl":    "https://example.com/episode.mp3",
		"clipStartMs": 900000,
		"clipEndMs":   930000,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var clip ClipResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &clip))
	assert.Contains(t, clip.ID, "clip-")
	assert.Equal(t, "created", clip.Status)
	assert.False(t, clip.HasTranscript)
}

func TestCreateClipEndpoint_InvalidWindow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/clips", map[string]any{
		"audioUrl":    "https://example.com/episode.mp3",
		"clipStartMs": 5000,
		"clipEndMs":   4000,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestGetClipEndpoint_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/clips/clip-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestListClipsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/clips")
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListClipsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Empty(t, list.Clips)

	ts.createClip(t)
	ts.createClip(t)

	resp = ts.api.Get("/api/v1/clips")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Clips, 2)
}

func TestTranscribeAndLoadFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)

	resp := ts.api.Post("/api/v1/clips/" + clipID + "/transcribe")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var clip ClipResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &clip))
	assert.Equal(t, "transcribed", clip.Status)
	assert.True(t, clip.HasTranscript)

	resp = ts.api.Post("/api/v1/clips/" + clipID + "/load")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var snapshot captions.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snapshot))
	assert.True(t, snapshot.HasTranscript)
	assert.Equal(t, 3, snapshot.WordCount)
	assert.Equal(t, 1, snapshot.UtteranceCount)
	assert.Equal(t, int64(30000), snapshot.ClipDurationMs)
}

func TestLoadClipEndpoint_NoTranscript(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)

	resp := ts.api.Post("/api/v1/clips/" + clipID + "/load")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCaptionEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)
	ts.loadClip(t, clipID)

	resp := ts.api.Get("/api/v1/clips/" + clipID + "/caption?t=100")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var caption captions.Caption
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &caption))
	assert.Equal(t, "Welcome back everyone", caption.Text)
	assert.True(t, caption.Active)
	assert.Equal(t, "A", caption.Speaker)

	// Past the utterance and all word windows: empty caption, still 200.
	resp = ts.api.Get("/api/v1/clips/" + clipID + "/caption?t=25000")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &caption))
	assert.Empty(t, caption.Text)
	assert.False(t, caption.Active)
}

func TestCaptionEndpoint_NotLoaded(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)

	resp := ts.api.Get("/api/v1/clips/" + clipID + "/caption?t=0")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestChunkEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)
	ts.loadClip(t, clipID)

	resp := ts.api.Get("/api/v1/clips/" + clipID + "/chunk?t=300")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var chunk captions.Chunk
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chunk))
	assert.Equal(t, "Welcome back", chunk.Text)
	assert.Equal(t, "Welcome", chunk.HighlightedWord)
	assert.True(t, chunk.Changed)

	// Same chunk text again: no change signal.
	resp = ts.api.Get("/api/v1/clips/" + clipID + "/chunk?t=300")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chunk))
	assert.False(t, chunk.Changed)
}

func TestInspectAndDebugEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)
	ts.loadClip(t, clipID)

	resp := ts.api.Get("/api/v1/clips/" + clipID + "/inspect")
	require.Equal(t, http.StatusOK, resp.Code)

	var snapshot captions.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snapshot))
	assert.False(t, snapshot.DebugMode)

	resp = ts.api.Post("/api/v1/clips/"+clipID+"/debug", map[string]any{"enabled": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snapshot))
	assert.True(t, snapshot.DebugMode)
}

func TestUnloadEndpoint_Idempotent(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)
	ts.loadClip(t, clipID)

	resp := ts.api.Post("/api/v1/clips/" + clipID + "/unload")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Post("/api/v1/clips/" + clipID + "/unload")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/clips/" + clipID + "/caption?t=0")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteClipEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	clipID := ts.createClip(t)

	resp := ts.api.Delete("/api/v1/clips/" + clipID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/clips/" + clipID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/clips/" + clipID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}
