package transcript

import (
	apperrors "github.com/droth0951/audio2-sub001/internal/errors"
)

// Normalized is a transcript whose timestamps have been rebased onto
// clip-relative time. It can only be built through Normalize, which
// makes applying the rebase twice structurally impossible: Normalize
// accepts the raw Transcript type and there is no mutation path back.
//
// Negative timestamps are valid here. A word that starts before the
// clip window keeps its negative start so selection can reject it by
// sign instead of matching a clamped zero.
type Normalized struct {
	words      []Word
	utterances []Utterance
	window     ClipWindow
}

// Normalize rebases every word and utterance of t onto clip-relative
// time by subtracting the clip start, exactly once. The input
// transcript is copied, never mutated; the caller keeps ownership of t
// while the returned Normalized owns its data exclusively.
//
// Returns a configuration error when the window is empty or inverted.
func Normalize(t Transcript, w ClipWindow) (*Normalized, error) {
	if !w.Valid() {
		return nil, apperrors.Configurationf("invalid clip window: end %dms must be after start %dms", w.EndMs, w.StartMs)
	}

	n := &Normalized{
		words:      make([]Word, len(t.Words)),
		utterances: make([]Utterance, len(t.Utterances)),
		window:     w,
	}
	for i, word := range t.Words {
		word.StartMs -= w.StartMs
		word.EndMs -= w.StartMs
		n.words[i] = word
	}
	for i, u := range t.Utterances {
		u.StartMs -= w.StartMs
		u.EndMs -= w.StartMs
		n.utterances[i] = u
	}
	return n, nil
}

// Words returns the clip-relative words in sequence order.
// The slice is owned by the Normalized and must not be mutated.
func (n *Normalized) Words() []Word {
	return n.words
}

// Utterances returns the clip-relative utterances in sequence order.
// The slice is owned by the Normalized and must not be mutated.
func (n *Normalized) Utterances() []Utterance {
	return n.utterances
}

// Window returns the absolute clip window this transcript was rebased against.
func (n *Normalized) Window() ClipWindow {
	return n.window
}

// WordCount returns the number of words.
func (n *Normalized) WordCount() int {
	return len(n.words)
}

// UtteranceCount returns the number of utterances.
func (n *Normalized) UtteranceCount() int {
	return len(n.utterances)
}
