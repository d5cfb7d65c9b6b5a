// Package captions implements the caption synchronization engine: given
// a transcript normalized onto clip-relative time, it decides what text
// is active at any playback instant.
//
// An Engine is driven synchronously by the host's playback tick. It
// performs no I/O, never blocks, and imposes no call cadence; queries
// are pure functions of the loaded state and the queried time, so
// irregular or backward-jumping timestamps from user seeking are fine.
// Engines are not safe for concurrent use. Hosts that need concurrent
// caption streams (preview vs. export) use one Engine per stream.
package captions

import (
	"log/slog"

	"github.com/droth0951/audio2-sub001/internal/transcript"
)

// Engine holds one clip's caption state. The zero-value-like state
// after NewEngine is Uninitialized; SetTranscript moves it to Loaded
// and Reset moves it back.
type Engine struct {
	logger   *slog.Logger
	chunkCfg ChunkConfig
	debug    bool

	// nil while Uninitialized. The Engine exclusively owns this copy.
	normalized *transcript.Normalized

	// lastChunkText is the only mutable bookkeeping: it drives the
	// chunk change signal and never influences what text is computed.
	lastChunkText string
}

// Options configures a new Engine.
type Options struct {
	// Chunk sets the chunk-mode defaults. Zero fields fall back to the
	// package defaults (150ms lookahead, 400ms lookback, 3 words).
	Chunk ChunkConfig
	// Logger receives trace records when debug mode is on.
	Logger *slog.Logger
	// Debug enables per-query trace logging from the start.
	Debug bool
}

// NewEngine creates an Uninitialized engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:   logger,
		chunkCfg: opts.Chunk.withDefaults(),
		debug:    opts.Debug,
	}
}

// SetTranscript normalizes the raw transcript against the clip window
// and loads it. The engine keeps its own normalized copy; the caller
// must not hand the same raw transcript to Normalize again. Fails with
// a configuration error when the window is empty or inverted, leaving
// the engine state unchanged.
func (e *Engine) SetTranscript(t transcript.Transcript, w transcript.ClipWindow) error {
	n, err := transcript.Normalize(t, w)
	if err != nil {
		return err
	}
	e.normalized = n
	e.lastChunkText = ""

	if e.debug {
		e.logger.Debug("transcript loaded",
			"words", n.WordCount(),
			"utterances", n.UtteranceCount(),
			"clip_duration_ms", w.DurationMs(),
		)
	}
	return nil
}

// Reset discards the loaded transcript and returns the engine to
// Uninitialized. Resetting an already-Uninitialized engine is a no-op.
func (e *Engine) Reset() {
	e.normalized = nil
	e.lastChunkText = ""
}

// Loaded reports whether a transcript is loaded.
func (e *Engine) Loaded() bool {
	return e.normalized != nil
}

// SetDebugMode toggles trace logging on selection calls. Purely
// observational; selection outcomes are identical either way.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// DebugMode reports whether trace logging is enabled.
func (e *Engine) DebugMode() bool {
	return e.debug
}
