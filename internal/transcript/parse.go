package transcript

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
)

// rawDocument splits the provider payload so each section can be
// decoded independently. A malformed utterances array must not take
// the words down with it.
type rawDocument struct {
	Words      jsontext.Value `json:"words"`
	Utterances jsontext.Value `json:"utterances"`
}

// Parse decodes a provider transcript payload.
//
// Captions are a non-critical enhancement layer, so malformed input
// (invalid JSON, missing fields, non-array types) degrades to an empty
// transcript instead of an error. Selection over an empty transcript
// always yields the inactive caption.
func Parse(data []byte) Transcript {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Transcript{}
	}

	var t Transcript
	if len(doc.Words) > 0 {
		var words []Word
		if err := json.Unmarshal(doc.Words, &words); err == nil {
			t.Words = words
		}
	}
	if len(doc.Utterances) > 0 {
		var utterances []Utterance
		if err := json.Unmarshal(doc.Utterances, &utterances); err == nil {
			t.Utterances = utterances
		}
	}
	return t
}
