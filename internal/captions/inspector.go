package captions

// Snapshot is a read-only view of the engine's loaded state, intended
// for logging and debugging, not for control flow.
type Snapshot struct {
	HasTranscript  bool  `json:"hasTranscript"`
	WordCount      int   `json:"wordCount"`
	UtteranceCount int   `json:"utteranceCount"`
	ClipStartMs    int64 `json:"clipStartMs"`
	ClipEndMs      int64 `json:"clipEndMs"`
	ClipDurationMs int64 `json:"clipDurationMs"`
	DebugMode      bool  `json:"debugModeEnabled"`
}

// Snapshot reports the engine's current state without mutating it.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		DebugMode: e.debug,
	}
	if e.normalized == nil {
		return s
	}

	w := e.normalized.Window()
	s.HasTranscript = true
	s.WordCount = e.normalized.WordCount()
	s.UtteranceCount = e.normalized.UtteranceCount()
	s.ClipStartMs = w.StartMs
	s.ClipEndMs = w.EndMs
	s.ClipDurationMs = w.DurationMs()
	return s
}
