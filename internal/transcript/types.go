// Package transcript defines the speech-recognition data model and the
// clip-window normalization that rebases absolute provider timestamps
// onto clip-relative time.
package transcript

// Word is a single recognized word with its timing interval.
// Timestamps are milliseconds in whatever time base the containing
// transcript uses: absolute media time in a Transcript, clip-relative
// time in a Normalized.
type Word struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start"`
	EndMs   int64  `json:"end"`
}

// Utterance is a provider-defined span of continuous speech, typically
// one speaker turn. Utterances partition the transcript at a coarser
// granularity than words and may overlap due to upstream imprecision.
type Utterance struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start"`
	EndMs   int64  `json:"end"`
	Speaker string `json:"speaker,omitempty"`
}

// Transcript is the raw recognition output as received from the
// provider, with absolute timestamps into the original media.
type Transcript struct {
	Words      []Word      `json:"words"`
	Utterances []Utterance `json:"utterances,omitempty"`
}

// Empty reports whether the transcript carries no usable content.
func (t Transcript) Empty() bool {
	return len(t.Words) == 0 && len(t.Utterances) == 0
}

// ClipWindow is the absolute bounds of the selected clip within the
// source media, in milliseconds.
type ClipWindow struct {
	StartMs int64 `json:"clipStartMs"`
	EndMs   int64 `json:"clipEndMs"`
}

// DurationMs returns the clip length in milliseconds.
func (w ClipWindow) DurationMs() int64 {
	return w.EndMs - w.StartMs
}

// Valid reports whether the window bounds are usable.
func (w ClipWindow) Valid() bool {
	return w.EndMs > w.StartMs
}
