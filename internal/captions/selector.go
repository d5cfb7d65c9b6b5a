package captions

import (
	"strings"

	"github.com/droth0951/audio2-sub001/internal/transcript"
)

// bootstrapWindowMs is how long after clip start the first utterance is
// shown regardless of its own interval. Recognition boundaries are
// imprecise near clip start; users expect a caption immediately rather
// than a blank frame until the nominal interval begins.
const bootstrapWindowMs int64 = 500

// Caption is the externally visible result of a selection query.
type Caption struct {
	Text    string `json:"text"`
	Active  bool   `json:"isActive"`
	Speaker string `json:"speaker,omitempty"`
}

// Select returns the caption active at the given clip-relative time.
//
// Selection order, first match wins:
//  1. bootstrap: within the first 500ms of the clip, the first
//     utterance in sequence order wins regardless of its interval;
//  2. the first utterance (sequence order) whose interval contains
//     atMs — sequence order is the tie-break for overlapping
//     utterances, deterministically;
//  3. word fallback: every word whose interval contains atMs, joined
//     with single spaces in sequence order;
//  4. the empty, inactive caption.
//
// Select is a pure function of the loaded state and atMs: identical
// inputs always produce identical results. Querying an Uninitialized
// engine returns the empty caption.
func (e *Engine) Select(atMs int64) Caption {
	if e.normalized == nil {
		return Caption{}
	}

	caption, candidates := selectCaption(e.normalized, atMs)

	if e.debug {
		e.logger.Debug("caption selected",
			"at_ms", atMs,
			"candidates", candidates,
			"text", caption.Text,
			"active", caption.Active,
		)
	}
	return caption
}

// selectCaption implements the selection policy over normalized data.
// It also reports how many intervals contained atMs, for trace logs.
func selectCaption(n *transcript.Normalized, atMs int64) (Caption, int) {
	utterances := n.Utterances()

	// Bootstrap rule.
	if atMs >= 0 && atMs <= bootstrapWindowMs && len(utterances) > 0 {
		first := utterances[0]
		return Caption{Text: first.Text, Active: true, Speaker: first.Speaker}, 1
	}

	// Utterance match, sequence order breaks overlap ties.
	matchIdx := -1
	matches := 0
	for i, u := range utterances {
		if atMs >= u.StartMs && atMs <= u.EndMs {
			if matchIdx < 0 {
				matchIdx = i
			}
			matches++
		}
	}
	if matchIdx >= 0 {
		u := utterances[matchIdx]
		return Caption{Text: u.Text, Active: true, Speaker: u.Speaker}, matches
	}

	// Word fallback. Normally at most one word is active; when
	// recognition timing yields several at once, all are shown joined
	// rather than silently suppressed.
	var active []string
	for _, w := range n.Words() {
		if atMs >= w.StartMs && atMs <= w.EndMs {
			active = append(active, w.Text)
		}
	}
	if len(active) > 0 {
		return Caption{Text: strings.Join(active, " "), Active: true}, len(active)
	}

	return Caption{}, 0
}
