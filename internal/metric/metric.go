// Package metric implements the nine speech evaluation metrics. Six work on
// the transcript (clarity, pace, pause management, filler reduction,
// repetition control, structure) and three on audio features (loudness,
// pitch variation, stamina). Each evaluator is pure: same inputs, same
// score.
package metric

import (
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/features"
	"github.com/MrWong99/orato/pkg/provider/transcribe"
)

// Inputs carries everything an evaluator may need. Transcript metrics ignore
// Features; audio metrics ignore Transcript. Features may be nil when
// extraction failed, in which case audio metrics report a degraded result.
type Inputs struct {
	Transcript *transcribe.Transcript
	Features   *features.Features
	Duration   time.Duration
	Profile    evaluation.Profile
}

// Evaluator scores one metric. Evaluate returns an error only for genuinely
// broken input; recoverable conditions (silence, missing features) are
// reported through the result instead.
type Evaluator interface {
	ID() evaluation.MetricID
	Evaluate(in Inputs) (evaluation.MetricResult, error)
}

// Config bundles the tunable thresholds shared by the evaluators. Values not
// set fall back to the defaults via Default.
type Config struct {
	// Pause thresholds.
	LongPause      time.Duration
	ExcessivePause time.Duration

	// Filler detection.
	FillerWords []string

	// Clarity.
	LowConfidence float64

	// Structure detection.
	IntroMarkers      []string
	ConclusionMarkers []string

	// Repetition detection.
	MinRepeatWordLen int
	PhraseRepeats    int

	// Stamina.
	MinStaminaDuration time.Duration
}

// Default returns the standard evaluation thresholds.
func Default() Config {
	return Config{
		LongPause:      2 * time.Second,
		ExcessivePause: 4 * time.Second,
		FillerWords: []string{
			"um", "uh", "umm", "uhh", "like", "you know",
			"sort of", "kind of", "basically", "actually",
			"so", "well", "right", "okay", "yeah",
		},
		LowConfidence: 0.6,
		IntroMarkers: []string{
			"hello", "hi", "good morning", "good afternoon",
			"today", "i will", "i am going to", "my topic",
			"let me tell you", "my name is",
		},
		ConclusionMarkers: []string{
			"conclusion", "finally", "in summary", "to conclude",
			"thank you", "that is all", "in closing", "to sum up",
			"the end", "that's all",
		},
		MinRepeatWordLen:   3,
		PhraseRepeats:      3,
		MinStaminaDuration: 15 * time.Second,
	}
}

// All returns every evaluator, in canonical metric order.
func All(cfg Config) []Evaluator {
	return []Evaluator{
		NewClarity(cfg),
		NewPace(),
		NewPauses(cfg),
		NewFillers(cfg),
		NewRepetition(cfg),
		NewStructure(cfg),
		NewLoudness(),
		NewPitchVariation(),
		NewStamina(cfg),
	}
}

// normalizeWord lowercases a transcript word and strips trailing
// punctuation so lexical checks are robust against ASR formatting.
func normalizeWord(w string) string {
	out := make([]rune, 0, len(w))
	for _, r := range w {
		switch r {
		case '.', ',', '!', '?':
		default:
			out = append(out, lower(r))
		}
	}
	return string(out)
}

func lower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// degraded builds the placeholder result for a metric that could not be
// computed. The neutral score keeps child presentations sensible while the
// degraded flag excludes it from the weighted overall.
func degraded(id evaluation.MetricID, reason string) evaluation.MetricResult {
	return evaluation.MetricResult{
		Metric:   id,
		Score:    70,
		Feedback: []string{reason},
		Degraded: true,
	}
}
