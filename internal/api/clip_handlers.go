package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/droth0951/audio2-sub001/internal/captions"
	"github.com/droth0951/audio2-sub001/internal/service"
	"github.com/droth0951/audio2-sub001/internal/store"
)

func (s *Server) registerClipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createClip",
		Method:      http.MethodPost,
		Path:        "/api/v1/clips",
		Summary:     "Create clip",
		Description: "Registers a podcast clip (episode audio URL plus clip window)",
		Tags:        []string{"Clips"},
	}, s.handleCreateClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "listClips",
		Method:      http.MethodGet,
		Path:        "/api/v1/clips",
		Summary:     "List clips",
		Description: "Returns all stored clips",
		Tags:        []string{"Clips"},
	}, s.handleListClips)

	huma.Register(s.api, huma.Operation{
		OperationID: "getClip",
		Method:      http.MethodGet,
		Path:        "/api/v1/clips/{id}",
		Summary:     "Get clip",
		Description: "Returns a clip by ID",
		Tags:        []string{"Clips"},
	}, s.handleGetClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "transcribeClip",
		Method:      http.MethodPost,
		Path:        "/api/v1/clips/{id}/transcribe",
		Summary:     "Transcribe clip",
		Description: "Submits the clip's audio to the transcription provider and waits for the result",
		Tags:        []string{"Clips"},
	}, s.handleTranscribeClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadClip",
		Method:      http.MethodPost,
		Path:        "/api/v1/clips/{id}/load",
		Summary:     "Load clip",
		Description: "Loads the clip's transcript into a caption engine, rebasing timestamps onto clip time",
		Tags:        []string{"Captions"},
	}, s.handleLoadClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCaption",
		Method:      http.MethodGet,
		Path:        "/api/v1/clips/{id}/caption",
		Summary:     "Get caption",
		Description: "Returns the caption active at a clip-relative playback time",
		Tags:        []string{"Captions"},
	}, s.handleGetCaption)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChunk",
		Method:      http.MethodGet,
		Path:        "/api/v1/clips/{id}/chunk",
		Summary:     "Get word chunk",
		Description: "Returns the word chunk visible at a clip-relative playback time",
		Tags:        []string{"Captions"},
	}, s.handleGetChunk)

	huma.Register(s.api, huma.Operation{
		OperationID: "inspectClip",
		Method:      http.MethodGet,
		Path:        "/api/v1/clips/{id}/inspect",
		Summary:     "Inspect clip engine",
		Description: "Returns a read-only snapshot of the clip's caption engine state",
		Tags:        []string{"Captions"},
	}, s.handleInspectClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "setClipDebugMode",
		Method:      http.MethodPost,
		Path:        "/api/v1/clips/{id}/debug",
		Summary:     "Set debug mode",
		Description: "Toggles per-selection trace logging on the clip's caption engine",
		Tags:        []string{"Captions"},
	}, s.handleSetDebugMode)

	huma.Register(s.api, huma.Operation{
		OperationID: "unloadClip",
		Method:      http.MethodPost,
		Path:        "/api/v1/clips/{id}/unload",
		Summary:     "Unload clip",
		Description: "Resets and removes the clip's caption engine; idempotent",
		Tags:        []string{"Captions"},
	}, s.handleUnloadClip)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteClip",
		Method:      http.MethodDelete,
		Path:        "/api/v1/clips/{id}",
		Summary:     "Delete clip",
		Description: "Unloads the clip's engine and deletes the stored record",
		Tags:        []string{"Clips"},
	}, s.handleDeleteClip)
}

// === DTOs ===

type ClipResponse struct {
	ID            string    `json:"id" doc:"Clip ID"`
	AudioURL      string    `json:"audioUrl" doc:"Episode audio URL"`
	ClipStartMs   int64     `json:"clipStartMs" doc:"Clip start in absolute episode time (ms)"`
	ClipEndMs     int64     `json:"clipEndMs" doc:"Clip end in absolute episode time (ms)"`
	Status        string    `json:"status" doc:"Clip lifecycle status"`
	HasTranscript bool      `json:"hasTranscript" doc:"Whether a transcript is stored"`
	CreatedAt     time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updatedAt" doc:"Last update time"`
}

func toClipResponse(clip *store.Clip) ClipResponse {
	return ClipResponse{
		ID:            clip.ID,
		AudioURL:      clip.AudioURL,
		ClipStartMs:   clip.ClipStartMs,
		ClipEndMs:     clip.ClipEndMs,
		Status:        string(clip.Status),
		HasTranscript: len(clip.TranscriptJSON) > 0,
		CreatedAt:     clip.CreatedAt,
		UpdatedAt:     clip.UpdatedAt,
	}
}

type CreateClipInput struct {
	Body service.CreateClipRequest
}

type ClipOutput struct {
	Body ClipResponse
}

type ListClipsResponse struct {
	Clips []ClipResponse `json:"clips" doc:"All stored clips"`
}

type ListClipsOutput struct {
	Body ListClipsResponse
}

type ClipIDInput struct {
	ID string `path:"id" doc:"Clip ID"`
}

type CaptionQueryInput struct {
	ID string `path:"id" doc:"Clip ID"`
	T  int64  `query:"t" doc:"Clip-relative playback time in milliseconds"`
}

type CaptionOutput struct {
	Body captions.Caption
}

type ChunkOutput struct {
	Body captions.Chunk
}

type SnapshotOutput struct {
	Body captions.Snapshot
}

type SetDebugModeInput struct {
	ID   string `path:"id" doc:"Clip ID"`
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether trace logging is enabled"`
	}
}

// === Handlers ===

func (s *Server) handleCreateClip(ctx context.Context, input *CreateClipInput) (*ClipOutput, error) {
	clip, err := s.clips.CreateClip(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &ClipOutput{Body: toClipResponse(clip)}, nil
}

func (s *Server) handleListClips(ctx context.Context, _ *struct{}) (*ListClipsOutput, error) {
	clips, err := s.clips.ListClips(ctx)
	if err != nil {
		return nil, err
	}

	resp := ListClipsResponse{Clips: make([]ClipResponse, 0, len(clips))}
	for _, clip := range clips {
		resp.Clips = append(resp.Clips, toClipResponse(clip))
	}
	return &ListClipsOutput{Body: resp}, nil
}

func (s *Server) handleGetClip(ctx context.Context, input *ClipIDInput) (*ClipOutput, error) {
	clip, err := s.clips.GetClip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ClipOutput{Body: toClipResponse(clip)}, nil
}

func (s *Server) handleTranscribeClip(ctx context.Context, input *ClipIDInput) (*ClipOutput, error) {
	clip, err := s.clips.TranscribeClip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ClipOutput{Body: toClipResponse(clip)}, nil
}

func (s *Server) handleLoadClip(ctx context.Context, input *ClipIDInput) (*SnapshotOutput, error) {
	snapshot, err := s.clips.LoadClip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotOutput{Body: snapshot}, nil
}

func (s *Server) handleGetCaption(ctx context.Context, input *CaptionQueryInput) (*CaptionOutput, error) {
	caption, err := s.clips.CaptionAt(ctx, input.ID, input.T)
	if err != nil {
		return nil, err
	}
	return &CaptionOutput{Body: caption}, nil
}

func (s *Server) handleGetChunk(ctx context.Context, input *CaptionQueryInput) (*ChunkOutput, error) {
	chunk, err := s.clips.ChunkAt(ctx, input.ID, input.T)
	if err != nil {
		return nil, err
	}
	return &ChunkOutput{Body: chunk}, nil
}

func (s *Server) handleInspectClip(ctx context.Context, input *ClipIDInput) (*SnapshotOutput, error) {
	snapshot, err := s.clips.InspectClip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotOutput{Body: snapshot}, nil
}

func (s *Server) handleSetDebugMode(ctx context.Context, input *SetDebugModeInput) (*SnapshotOutput, error) {
	if err := s.clips.SetDebugMode(ctx, input.ID, input.Body.Enabled); err != nil {
		return nil, err
	}
	snapshot, err := s.clips.InspectClip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotOutput{Body: snapshot}, nil
}

func (s *Server) handleUnloadClip(ctx context.Context, input *ClipIDInput) (*struct{}, error) {
	s.clips.UnloadClip(ctx, input.ID)
	return &struct{}{}, nil
}

func (s *Server) handleDeleteClip(ctx context.Context, input *ClipIDInput) (*struct{}, error) {
	if err := s.clips.DeleteClip(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
