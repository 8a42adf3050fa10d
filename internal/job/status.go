// Package job holds the asynchronous evaluation job model: the status state
// machine, the concurrent-safe registry and the pipeline runner that drives a
// submitted recording through preprocessing, transcription, feature
// extraction, metric evaluation and presentation building.
package job

// Status is a job lifecycle state. A job only ever moves forward through the
// pipeline, or to [StatusFailed] from any non-terminal state.
type Status string

const (
	StatusPending            Status = "pending"
	StatusPreprocessing      Status = "preprocessing"
	StatusExtractingFeatures Status = "extracting_features"
	StatusTranscribing       Status = "transcribing"
	StatusAnalyzing          Status = "analyzing"
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
)

// statusRank orders the pipeline stages. Feature extraction and transcription
// share a rank because they run concurrently; lateral moves between the two
// are allowed.
var statusRank = map[Status]int{
	StatusPending:            0,
	StatusPreprocessing:      1,
	StatusExtractingFeatures: 2,
	StatusTranscribing:       2,
	StatusAnalyzing:          3,
	StatusCompleted:          4,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanAdvance reports whether a job may transition from s to next. Failing is
// allowed from any non-terminal state; everything else must move forward
// through the pipeline (or sideways between the two concurrent stages).
func (s Status) CanAdvance(next Status) bool {
	if s.Terminal() || s == next {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Message returns the human-readable progress line shown to clients polling
// a job in this state.
func (s Status) Message() string {
	switch s {
	case StatusPending:
		return "Job queued"
	case StatusPreprocessing:
		return "Preparing your audio..."
	case StatusExtractingFeatures:
		return "Analyzing your voice..."
	case StatusTranscribing:
		return "Listening to your speech..."
	case StatusAnalyzing:
		return "Analyzing your performance..."
	case StatusCompleted:
		return "Evaluation complete!"
	case StatusFailed:
		return "Evaluation failed"
	}
	return "Waiting in queue..."
}
