package captions

import "strings"

// highlightWindowMs is how long a word stays highlighted after its
// start when the chunk style is active.
const highlightWindowMs int64 = 500

// Default chunk configuration.
const (
	defaultLookaheadMs = 150
	defaultLookbackMs  = 400
	defaultMaxWords    = 3
)

// ChunkConfig tunes the denser multi-word caption style. A word becomes
// visible LookaheadMs before its start and stays visible until
// LookbackMs after its start; at most MaxWords are shown at once.
type ChunkConfig struct {
	LookaheadMs int64 `json:"lookaheadMs"`
	LookbackMs  int64 `json:"lookbackMs"`
	MaxWords    int   `json:"maxWords"`
}

// withDefaults fills zero fields with the package defaults.
func (c ChunkConfig) withDefaults() ChunkConfig {
	if c.LookaheadMs <= 0 {
		c.LookaheadMs = defaultLookaheadMs
	}
	if c.LookbackMs <= 0 {
		c.LookbackMs = defaultLookbackMs
	}
	if c.MaxWords <= 0 {
		c.MaxWords = defaultMaxWords
	}
	return c
}

// Chunk is a short run of consecutive words displayed as one caption
// unit, with at most one highlighted active word.
type Chunk struct {
	Text            string `json:"text"`
	HighlightedWord string `json:"highlightedWord,omitempty"`
	// Changed is true only when Text differs from the previously
	// emitted chunk, so the renderer can drive a transition exactly
	// once per chunk change.
	Changed bool `json:"changed"`
}

// BuildChunk returns the chunk visible at the given clip-relative time.
//
// Visible words are those whose start lies within the configured
// lookahead/lookback window around atMs, taken in sequence order up to
// MaxWords. The highlighted word is the first (sequence order) whose
// [StartMs, StartMs+500] interval contains atMs; zero or one word is
// highlighted, never more. Text and HighlightedWord depend only on the
// loaded state and atMs; only the change signal carries history.
func (e *Engine) BuildChunk(atMs int64) Chunk {
	if e.normalized == nil {
		return Chunk{}
	}

	cfg := e.chunkCfg
	var (
		visible     []string
		highlighted string
	)
	for _, w := range e.normalized.Words() {
		// Visible from StartMs-LookaheadMs until StartMs+LookbackMs.
		if atMs >= w.StartMs-cfg.LookaheadMs && atMs <= w.StartMs+cfg.LookbackMs {
			if len(visible) < cfg.MaxWords {
				visible = append(visible, w.Text)
			}
		}
		if highlighted == "" && atMs >= w.StartMs && atMs <= w.StartMs+highlightWindowMs {
			highlighted = w.Text
		}
	}

	text := strings.Join(visible, " ")
	chunk := Chunk{
		Text:            text,
		HighlightedWord: highlighted,
		Changed:         text != e.lastChunkText,
	}
	e.lastChunkText = text

	if e.debug {
		e.logger.Debug("chunk built",
			"at_ms", atMs,
			"candidates", len(visible),
			"text", chunk.Text,
			"highlighted", chunk.HighlightedWord,
			"changed", chunk.Changed,
		)
	}
	return chunk
}
