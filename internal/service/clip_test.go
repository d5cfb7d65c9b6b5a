package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/droth0951/audio2-sub001/internal/errors"
	"github.com/droth0951/audio2-sub001/internal/logger"
	"github.com/droth0951/audio2-sub001/internal/store"
	"github.com/droth0951/audio2-sub001/internal/transcription"
)

// providerPayload is an AssemblyAI-shaped result whose timestamps are
// absolute episode time for a clip window of [900000, 930000].
const providerPayload = `{
	"words": [
		{"text": "Hello", "start": 900000, "end": 900400},
		{"text": "world", "start": 900450, "end": 900800}
	],
	"utterances": [
		{"text": "Hello world", "start": 900000, "end": 900800, "speaker": "A"}
	]
}`

type fakeTranscriber struct {
	payload   []byte
	submitErr error
	waitErr   error
	submitted []string
}

func (f *fakeTranscriber) SubmitAudio(_ context.Context, audioURL string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, audioURL)
	return "job-1", nil
}

func (f *fakeTranscriber) WaitForTranscript(_ context.Context, jobID string) (*transcription.Result, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &transcription.Result{
		ID:      jobID,
		Status:  transcription.StatusCompleted,
		Payload: f.payload,
	}, nil
}

func setupService(t *testing.T) (*ClipService, *fakeTranscriber, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "clip-service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	tr := &fakeTranscriber{payload: []byte(providerPayload)}
	log := logger.New(logger.Config{Writer: os.Stderr, Environment: "development", Level: slog.LevelError})
	svc := NewClipService(st, tr, EngineOptions{}, log.Logger)

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return svc, tr, cleanup
}

func createTestClip(t *testing.T, svc *ClipService) *store.Clip {
	t.Helper()
	clip, err := svc.CreateClip(context.Background(), CreateClipRequest{
		AudioURL:    "https://example.com/episode.mp3",
		ClipStartMs: 900000,
		ClipEndMs:   930000,
	})
	require.NoError(t, err)
	return clip
}

func TestCreateClip(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	clip := createTestClip(t, svc)
	assert.Contains(t, clip.ID, "clip-")
	assert.Equal(t, store.ClipStatusCreated, clip.Status)

	retrieved, err := svc.GetClip(context.Background(), clip.ID)
	require.NoError(t, err)
	assert.Equal(t, clip.AudioURL, retrieved.AudioURL)
}

func TestCreateClip_InvalidRequest(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	tests := []struct {
		name string
		req  CreateClipRequest
	}{
		{"missing URL", CreateClipRequest{ClipStartMs: 0, ClipEndMs: 1000}},
		{"end not after start", CreateClipRequest{AudioURL: "https://example.com/a.mp3", ClipStartMs: 1000, ClipEndMs: 1000}},
		{"negative start", CreateClipRequest{AudioURL: "https://example.com/a.mp3", ClipStartMs: -5, ClipEndMs: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateClip(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestTranscribeClip(t *testing.T) {
	svc, tr, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	updated, err := svc.TranscribeClip(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ClipStatusTranscribed, updated.Status)
	assert.JSONEq(t, providerPayload, string(updated.TranscriptJSON))
	assert.Equal(t, []string{clip.AudioURL}, tr.submitted)
}

func TestTranscribeClip_NotFound(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	_, err := svc.TranscribeClip(context.Background(), "clip-missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTranscribeClip_ProviderFailure(t *testing.T) {
	svc, tr, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	tr.waitErr = apperrors.Unavailable("transcription failed: audio unreachable")
	_, err := svc.TranscribeClip(ctx, clip.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnavailable))

	// Clip keeps its pre-transcription state.
	stored, err := svc.GetClip(ctx, clip.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ClipStatusCreated, stored.Status)
	assert.Empty(t, stored.TranscriptJSON)
}

func TestLoadClipAndQuery(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	_, err := svc.TranscribeClip(ctx, clip.ID)
	require.NoError(t, err)

	snapshot, err := svc.LoadClip(ctx, clip.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.HasTranscript)
	assert.Equal(t, 2, snapshot.WordCount)
	assert.Equal(t, 1, snapshot.UtteranceCount)
	assert.Equal(t, int64(30000), snapshot.ClipDurationMs)

	// Timestamps were rebased onto clip time, so the utterance is
	// active at t=100ms.
	caption, err := svc.CaptionAt(ctx, clip.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", caption.Text)
	assert.True(t, caption.Active)
	assert.Equal(t, "A", caption.Speaker)

	chunk, err := svc.ChunkAt(ctx, clip.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, "Hello", chunk.Text)
	assert.Equal(t, "Hello", chunk.HighlightedWord)
	assert.True(t, chunk.Changed)
}

func TestLoadClip_NoTranscript(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	clip := createTestClip(t, svc)

	_, err := svc.LoadClip(context.Background(), clip.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestQueryUnloadedClip(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	_, err := svc.CaptionAt(ctx, clip.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.ChunkAt(ctx, clip.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.InspectClip(ctx, clip.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestUnloadClip_Idempotent(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	_, err := svc.TranscribeClip(ctx, clip.ID)
	require.NoError(t, err)
	_, err = svc.LoadClip(ctx, clip.ID)
	require.NoError(t, err)

	svc.UnloadClip(ctx, clip.ID)
	svc.UnloadClip(ctx, clip.ID)

	_, err = svc.CaptionAt(ctx, clip.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteClip(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	_, err := svc.TranscribeClip(ctx, clip.ID)
	require.NoError(t, err)
	_, err = svc.LoadClip(ctx, clip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClip(ctx, clip.ID))

	_, err = svc.GetClip(ctx, clip.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteClip(ctx, clip.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSetDebugMode(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	ctx := context.Background()
	clip := createTestClip(t, svc)

	_, err := svc.TranscribeClip(ctx, clip.ID)
	require.NoError(t, err)
	_, err = svc.LoadClip(ctx, clip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.SetDebugMode(ctx, clip.ID, true))

	snapshot, err := svc.InspectClip(ctx, clip.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.DebugMode)

	assert.True(t, errors.Is(svc.SetDebugMode(ctx, "clip-missing", true), apperrors.ErrNotFound))
}
