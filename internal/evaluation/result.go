package evaluation

import "time"

// Scores is the flat score summary of a completed evaluation. The JSON field
// names are part of the public API contract.
type Scores struct {
	Overall           int `json:"overall"`
	Clarity           int `json:"clarity"`
	Pace              int `json:"pace"`
	PauseManagement   int `json:"pause_management"`
	FillerReduction   int `json:"filler_reduction"`
	RepetitionControl int `json:"repetition_control"`
	Structure         int `json:"structure"`
	Loudness          int `json:"loudness"`
	PitchVariation    int `json:"pitch_variation"`
	Stamina           int `json:"stamina"`
}

// NewScores assembles a Scores summary from per-metric results and the
// aggregated overall score.
func NewScores(overall int, results map[MetricID]MetricResult) Scores {
	s := Scores{Overall: overall}
	for id, r := range results {
		switch id {
		case MetricClarity:
			s.Clarity = r.Score
		case MetricPace:
			s.Pace = r.Score
		case MetricPauseManagement:
			s.PauseManagement = r.Score
		case MetricFillerReduction:
			s.FillerReduction = r.Score
		case MetricRepetitionControl:
			s.RepetitionControl = r.Score
		case MetricStructure:
			s.Structure = r.Score
		case MetricLoudness:
			s.Loudness = r.Score
		case MetricPitchVariation:
			s.PitchVariation = r.Score
		case MetricStamina:
			s.Stamina = r.Score
		}
	}
	return s
}

// ByID returns the score for a metric, used by presentation builders that
// select metrics dynamically.
func (s Scores) ByID(id MetricID) int {
	switch id {
	case MetricClarity:
		return s.Clarity
	case MetricPace:
		return s.Pace
	case MetricPauseManagement:
		return s.PauseManagement
	case MetricFillerReduction:
		return s.FillerReduction
	case MetricRepetitionControl:
		return s.RepetitionControl
	case MetricStructure:
		return s.Structure
	case MetricLoudness:
		return s.Loudness
	case MetricPitchVariation:
		return s.PitchVariation
	case MetricStamina:
		return s.Stamina
	}
	return 0
}

// Metadata describes the submission an evaluation belongs to.
type Metadata struct {
	StudentName     string    `json:"student_name,omitempty"`
	StudentAge      int       `json:"student_age"`
	AgeGroup        Group     `json:"age_group"`
	Topic           string    `json:"topic,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	WordCount       int       `json:"word_count"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
	Model           string    `json:"model_used,omitempty"`
}

// TranscriptInfo is the transcript summary included in results.
type TranscriptInfo struct {
	FullText  string `json:"full_text"`
	WordCount int    `json:"word_count"`
	Language  string `json:"language,omitempty"`
}

// Result is the complete raw evaluation of one speech: everything teachers
// and parents see. Age-filtered child presentations are derived from it.
type Result struct {
	Metadata    Metadata                  `json:"metadata"`
	Transcript  TranscriptInfo            `json:"transcript"`
	Scores      Scores                    `json:"scores"`
	Analysis    map[MetricID]MetricResult `json:"detailed_analysis"`
	Suggestions []string                  `json:"improvement_suggestions"`
}
