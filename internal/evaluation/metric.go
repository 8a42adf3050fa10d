// Package evaluation holds the core scoring domain: metric identifiers,
// age-bracket profiles, weighted aggregation and improvement suggestions.
// Individual metric evaluators live in internal/metric; this package only
// defines the shared vocabulary they produce and consume.
package evaluation

import "math"

// MetricID identifies one of the nine evaluation metrics. The values double
// as the JSON field names in API responses, so they must never change.
type MetricID string

const (
	MetricClarity           MetricID = "clarity"
	MetricPace              MetricID = "pace"
	MetricPauseManagement   MetricID = "pause_management"
	MetricFillerReduction   MetricID = "filler_reduction"
	MetricRepetitionControl MetricID = "repetition_control"
	MetricStructure         MetricID = "structure"
	MetricLoudness          MetricID = "loudness"
	MetricPitchVariation    MetricID = "pitch_variation"
	MetricStamina           MetricID = "stamina"
)

// MetricOrder is the canonical ordering of all metrics. Iteration over maps
// keyed by MetricID should go through this slice to stay deterministic.
var MetricOrder = []MetricID{
	MetricClarity,
	MetricPace,
	MetricPauseManagement,
	MetricFillerReduction,
	MetricRepetitionControl,
	MetricStructure,
	MetricLoudness,
	MetricPitchVariation,
	MetricStamina,
}

// IsValid reports whether m is one of the nine known metrics.
func (m MetricID) IsValid() bool {
	switch m {
	case MetricClarity, MetricPace, MetricPauseManagement, MetricFillerReduction,
		MetricRepetitionControl, MetricStructure, MetricLoudness,
		MetricPitchVariation, MetricStamina:
		return true
	}
	return false
}

// MetricResult is the outcome of a single metric evaluation.
//
// Degraded marks results that could not actually be computed (evaluator
// failure, missing audio features). Degraded results still carry a neutral
// score for display purposes but are excluded from the weighted overall and
// their weight is redistributed across the computed metrics.
type MetricResult struct {
	Metric   MetricID `json:"metric"`
	Score    int      `json:"score"`
	Feedback []string `json:"feedback,omitempty"`
	Detail   any      `json:"detail,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`
}

// ClampScore clamps a raw score into the valid 0-100 range and rounds to
// the nearest integer, matching how every evaluator reports.
func ClampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}
