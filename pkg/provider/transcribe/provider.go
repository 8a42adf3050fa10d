// Package transcribe defines the speech-to-text provider interface and the
// transcript types shared by the evaluation metrics.
package transcribe

import (
	"context"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// Word is a single recognized word with timing and recognition confidence.
// Confidence is in [0, 1]; low values indicate unclear speech rather than
// wrong pronunciation.
type Word struct {
	Text       string        `json:"word"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Confidence float64       `json:"confidence"`
}

// Segment is a contiguous stretch of recognized speech.
type Segment struct {
	Text  string        `json:"text"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Transcript is the full output of a transcription run.
type Transcript struct {
	Text     string    `json:"full_text"`
	Language string    `json:"language,omitempty"`
	Words    []Word    `json:"words"`
	Segments []Segment `json:"segments"`
}

// WordCount returns the number of recognized words.
func (t *Transcript) WordCount() int {
	if t == nil {
		return 0
	}
	return len(t.Words)
}

// Provider transcribes preprocessed audio. Implementations must be safe for
// concurrent use; jobs transcribe in parallel with feature extraction.
type Provider interface {
	Transcribe(ctx context.Context, audio preprocess.Audio) (*Transcript, error)
}
