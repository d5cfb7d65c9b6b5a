package providers

import (
	"github.com/samber/do/v2"

	"github.com/droth0951/audio2-sub001/internal/captions"
	"github.com/droth0951/audio2-sub001/internal/config"
	"github.com/droth0951/audio2-sub001/internal/logger"
	"github.com/droth0951/audio2-sub001/internal/service"
	"github.com/droth0951/audio2-sub001/internal/store"
	"github.com/droth0951/audio2-sub001/internal/transcription"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the clip database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Store.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Path == "" {
		log.Warn("Store path not configured, using in-memory database")
	}

	return &StoreHandle{Store: db}, nil
}

// TranscriptionClientHandle wraps the provider client with shutdown
// capability.
type TranscriptionClientHandle struct {
	*transcription.Client
}

// Shutdown implements do.Shutdownable.
func (h *TranscriptionClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideTranscriptionClient provides the transcription provider client.
func ProvideTranscriptionClient(i do.Injector) (*TranscriptionClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Transcription.APIKey == "" {
		log.Warn("Transcription API key not configured, transcription requests will be rejected by the provider")
	}

	client := transcription.New(transcription.Config{
		BaseURL:      cfg.Transcription.BaseURL,
		APIKey:       cfg.Transcription.APIKey,
		PollInterval: cfg.Transcription.PollInterval,
		PollTimeout:  cfg.Transcription.PollTimeout,
	}, log.Logger)

	return &TranscriptionClientHandle{Client: client}, nil
}

// ProvideClipService provides the clip business service.
func ProvideClipService(i do.Injector) (*service.ClipService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clientHandle := do.MustInvoke[*TranscriptionClientHandle](i)

	opts := service.EngineOptions{
		Chunk: captions.ChunkConfig{
			LookaheadMs: cfg.Captions.ChunkLookaheadMs,
			LookbackMs:  cfg.Captions.ChunkLookbackMs,
			MaxWords:    cfg.Captions.ChunkMaxWords,
		},
		Debug: cfg.Captions.Debug,
	}

	return service.NewClipService(storeHandle.Store, clientHandle.Client, opts, log.Logger), nil
}
