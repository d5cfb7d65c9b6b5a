package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/droth0951/audio2-sub001/internal/errors"
)

// clipPrefix namespaces clip records in the key space.
const clipPrefix = "clip:"

// ClipStatus tracks a clip's transcription lifecycle.
type ClipStatus string

const (
	ClipStatusCreated     ClipStatus = "created"
	ClipStatusTranscribed ClipStatus = "transcribed"
)

// Clip is a stored podcast clip and its transcription state.
// TranscriptJSON holds the provider payload verbatim; it is parsed
// only when the clip is loaded into a caption engine.
type Clip struct {
	ID             string     `json:"id"`
	AudioURL       string     `json:"audioUrl"`
	ClipStartMs    int64      `json:"clipStartMs"`
	ClipEndMs      int64      `json:"clipEndMs"`
	TranscriptJSON []byte     `json:"transcriptJson,omitempty"`
	Status         ClipStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func clipKey(id string) []byte {
	return []byte(clipPrefix + id)
}

// SaveClip persists a clip record, setting timestamps. CreatedAt is
// assigned on first save and preserved on updates.
func (s *Store) SaveClip(_ context.Context, clip *Clip) error {
	if clip.ID == "" {
		return apperrors.Validation("clip ID is required")
	}

	now := time.Now().UTC()
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = now
	}
	clip.UpdatedAt = now

	if err := s.set(clipKey(clip.ID), clip); err != nil {
		return fmt.Errorf("save clip: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("clip saved", "clip_id", clip.ID, "status", clip.Status)
	}
	return nil
}

// GetClip retrieves a clip by ID.
func (s *Store) GetClip(_ context.Context, id string) (*Clip, error) {
	var clip Clip
	err := s.get(clipKey(id), &clip)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFoundf("clip %s not found", id)
		}
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return &clip, nil
}

// ListClips returns all stored clips in key order.
func (s *Store) ListClips(_ context.Context) ([]*Clip, error) {
	prefix := []byte(clipPrefix)
	var clips []*Clip

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var clip Clip
				if unmarshalErr := json.Unmarshal(val, &clip); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed entries
				}
				clips = append(clips, &clip)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	return clips, nil
}

// DeleteClip removes a clip by ID.
// Returns a not-found error when no such clip exists.
func (s *Store) DeleteClip(_ context.Context, id string) error {
	exists, err := s.exists(clipKey(id))
	if err != nil {
		return fmt.Errorf("check clip existence: %w", err)
	}
	if !exists {
		return apperrors.NotFoundf("clip %s not found", id)
	}

	if err := s.delete(clipKey(id)); err != nil {
		return fmt.Errorf("delete clip: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("clip deleted", "clip_id", id)
	}
	return nil
}
