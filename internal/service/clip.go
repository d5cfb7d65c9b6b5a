// Package service provides the business logic layer for clip management
// and caption playback queries.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/droth0951/audio2-sub001/internal/captions"
	apperrors "github.com/droth0951/audio2-sub001/internal/errors"
	"github.com/droth0951/audio2-sub001/internal/id"
	"github.com/droth0951/audio2-sub001/internal/store"
	"github.com/droth0951/audio2-sub001/internal/transcript"
	"github.com/droth0951/audio2-sub001/internal/transcription"
	"github.com/droth0951/audio2-sub001/internal/validation"
)

// Transcriber is the transcription provider surface ClipService needs.
// *transcription.Client satisfies it.
type Transcriber interface {
	SubmitAudio(ctx context.Context, audioURL string) (string, error)
	WaitForTranscript(ctx context.Context, jobID string) (*transcription.Result, error)
}

// EngineOptions carries the caption engine defaults applied to every
// clip loaded by the service.
type EngineOptions struct {
	Chunk captions.ChunkConfig
	Debug bool
}

// ClipService orchestrates clip persistence, provider transcription,
// and an in-memory registry of caption engines. Engines themselves are
// single-threaded; the registry mutex serializes access to them.
type ClipService struct {
	store       *store.Store
	transcriber Transcriber
	validator   *validation.Validator
	engineOpts  EngineOptions
	logger      *slog.Logger

	mu      sync.Mutex
	engines map[string]*captions.Engine
}

// NewClipService creates a new clip service.
func NewClipService(st *store.Store, tr Transcriber, opts EngineOptions, logger *slog.Logger) *ClipService {
	return &ClipService{
		store:       st,
		transcriber: tr,
		validator:   validation.New(),
		engineOpts:  opts,
		logger:      logger,
		engines:     make(map[string]*captions.Engine),
	}
}

// CreateClipRequest is the input for CreateClip.
type CreateClipRequest struct {
	AudioURL    string `json:"audioUrl" validate:"required,url"`
	ClipStartMs int64  `json:"clipStartMs" validate:"gte=0"`
	ClipEndMs   int64  `json:"clipEndMs" validate:"gtfield=ClipStartMs"`
}

// CreateClip validates the request, mints an ID, and persists the clip.
func (s *ClipService) CreateClip(ctx context.Context, req CreateClipRequest) (*store.Clip, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	clipID, err := id.Generate("clip")
	if err != nil {
		return nil, fmt.Errorf("generate clip ID: %w", err)
	}

	clip := &store.Clip{
		ID:          clipID,
		AudioURL:    req.AudioURL,
		ClipStartMs: req.ClipStartMs,
		ClipEndMs:   req.ClipEndMs,
		Status:      store.ClipStatusCreated,
	}

	if err := s.store.SaveClip(ctx, clip); err != nil {
		return nil, err
	}

	s.logger.Info("clip created",
		"clip_id", clipID,
		"clip_start_ms", req.ClipStartMs,
		"clip_end_ms", req.ClipEndMs,
	)
	return clip, nil
}

// GetClip retrieves a clip by ID.
func (s *ClipService) GetClip(ctx context.Context, clipID string) (*store.Clip, error) {
	return s.store.GetClip(ctx, clipID)
}

// ListClips returns all stored clips.
func (s *ClipService) ListClips(ctx context.Context) ([]*store.Clip, error) {
	return s.store.ListClips(ctx)
}

// TranscribeClip submits the clip's audio to the provider, waits for
// the result, and stores the raw transcript payload on the clip.
func (s *ClipService) TranscribeClip(ctx context.Context, clipID string) (*store.Clip, error) {
	clip, err := s.store.GetClip(ctx, clipID)
	if err != nil {
		return nil, err
	}

	jobID, err := s.transcriber.SubmitAudio(ctx, clip.AudioURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transcription submitted", "clip_id", clipID, "job_id", jobID)

	result, err := s.transcriber.WaitForTranscript(ctx, jobID)
	if err != nil {
		return nil, err
	}

	clip.TranscriptJSON = result.Payload
	clip.Status = store.ClipStatusTranscribed
	if err := s.store.SaveClip(ctx, clip); err != nil {
		return nil, err
	}

	s.logger.Info("transcription stored", "clip_id", clipID, "job_id", jobID)
	return clip, nil
}

// LoadClip parses the clip's stored transcript and loads it into a
// fresh caption engine, replacing any previously loaded engine for the
// clip. Fails with a conflict error when the clip has no transcript
// yet, and with a configuration error when the clip window is invalid.
func (s *ClipService) LoadClip(ctx context.Context, clipID string) (captions.Snapshot, error) {
	clip, err := s.store.GetClip(ctx, clipID)
	if err != nil {
		return captions.Snapshot{}, err
	}
	if len(clip.TranscriptJSON) == 0 {
		return captions.Snapshot{}, apperrors.Conflict(fmt.Sprintf("clip %s has no transcript", clipID))
	}

	engine := captions.NewEngine(captions.Options{
		Chunk:  s.engineOpts.Chunk,
		Logger: s.logger,
		Debug:  s.engineOpts.Debug,
	})

	t := transcript.Parse(clip.TranscriptJSON)
	window := transcript.ClipWindow{StartMs: clip.ClipStartMs, EndMs: clip.ClipEndMs}
	if err := engine.SetTranscript(t, window); err != nil {
		return captions.Snapshot{}, err
	}

	s.mu.Lock()
	s.engines[clipID] = engine
	snapshot := engine.Snapshot()
	s.mu.Unlock()

	s.logger.Info("clip loaded",
		"clip_id", clipID,
		"words", snapshot.WordCount,
		"utterances", snapshot.UtteranceCount,
	)
	return snapshot, nil
}

// CaptionAt returns the caption active at atMs for a loaded clip.
func (s *ClipService) CaptionAt(_ context.Context, clipID string, atMs int64) (captions.Caption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[clipID]
	if !ok {
		return captions.Caption{}, apperrors.NotFoundf("clip %s is not loaded", clipID)
	}
	return engine.Select(atMs), nil
}

// ChunkAt returns the word chunk visible at atMs for a loaded clip.
func (s *ClipService) ChunkAt(_ context.Context, clipID string, atMs int64) (captions.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[clipID]
	if !ok {
		return captions.Chunk{}, apperrors.NotFoundf("clip %s is not loaded", clipID)
	}
	return engine.BuildChunk(atMs), nil
}

// InspectClip returns the read-only state snapshot of a loaded clip's
// engine.
func (s *ClipService) InspectClip(_ context.Context, clipID string) (captions.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[clipID]
	if !ok {
		return captions.Snapshot{}, apperrors.NotFoundf("clip %s is not loaded", clipID)
	}
	return engine.Snapshot(), nil
}

// SetDebugMode toggles trace logging on a loaded clip's engine.
func (s *ClipService) SetDebugMode(_ context.Context, clipID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[clipID]
	if !ok {
		return apperrors.NotFoundf("clip %s is not loaded", clipID)
	}
	engine.SetDebugMode(enabled)
	return nil
}

// UnloadClip resets and removes the clip's engine. Unloading a clip
// that is not loaded is a no-op.
func (s *ClipService) UnloadClip(_ context.Context, clipID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine, ok := s.engines[clipID]; ok {
		engine.Reset()
		delete(s.engines, clipID)
	}
}

// DeleteClip unloads the clip's engine and removes the stored record.
func (s *ClipService) DeleteClip(ctx context.Context, clipID string) error {
	s.UnloadClip(ctx, clipID)
	return s.store.DeleteClip(ctx, clipID)
}
