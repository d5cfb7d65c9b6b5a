package transcription

// Job statuses reported by the provider.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// submitRequest is the job creation payload.
type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
}

// jobEnvelope is the provider's job status wrapper. The words and
// utterances arrive in the same document and are decoded separately by
// the transcript package, which tolerates whatever shape they are in.
type jobEnvelope struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Result is a completed or in-flight transcription job.
type Result struct {
	ID     string
	Status string
	// Payload is the raw provider document, suitable for storage and
	// for transcript.Parse. Empty until the job completes.
	Payload []byte
}

// Done reports whether the job reached a terminal state.
func (r *Result) Done() bool {
	return r.Status == StatusCompleted || r.Status == StatusError
}
