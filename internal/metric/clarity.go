package metric

import (
	"math"

	"github.com/MrWong99/orato/internal/evaluation"
)

// Compile-time assertion that Clarity satisfies Evaluator.
var _ Evaluator = (*Clarity)(nil)

// Clarity scores speech clarity from ASR confidence. Low confidence means
// the recognizer struggled, which correlates with mumbled or rushed
// delivery. Accents and pronunciation variants are not penalized.
type Clarity struct {
	lowConfidence float64
}

// ClarityDetail is attached to the clarity result.
type ClarityDetail struct {
	AverageConfidence  float64       `json:"average_confidence"`
	LowConfidenceCount int           `json:"low_confidence_count"`
	LowConfidenceWords []UncleanWord `json:"low_confidence_words,omitempty"`
}

// UncleanWord is a word the recognizer was unsure about.
type UncleanWord struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"`
}

// NewClarity creates the clarity evaluator.
func NewClarity(cfg Config) *Clarity {
	return &Clarity{lowConfidence: cfg.LowConfidence}
}

func (c *Clarity) ID() evaluation.MetricID { return evaluation.MetricClarity }

func (c *Clarity) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	words := in.Transcript.Words
	if len(words) == 0 {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricClarity,
			Score:    0,
			Feedback: []string{"No speech detected"},
			Detail:   ClarityDetail{},
		}, nil
	}

	var sum float64
	var unclear []UncleanWord
	for _, w := range words {
		sum += w.Confidence
		if w.Confidence < c.lowConfidence {
			unclear = append(unclear, UncleanWord{
				Word:       w.Text,
				Confidence: round3(w.Confidence),
				Timestamp:  round2(w.Start.Seconds()),
			})
		}
	}
	avg := sum / float64(len(words))
	score := evaluation.ClampScore(avg * 100)

	detail := ClarityDetail{
		AverageConfidence:  round3(avg),
		LowConfidenceCount: len(unclear),
	}
	if len(unclear) > 5 {
		unclear = unclear[:5]
	}
	detail.LowConfidenceWords = unclear

	return evaluation.MetricResult{
		Metric:   evaluation.MetricClarity,
		Score:    score,
		Feedback: c.feedback(score, in.Profile.Group),
		Detail:   detail,
	}, nil
}

func (c *Clarity) feedback(score int, group evaluation.Group) []string {
	switch {
	case score < 50:
		if group.Young() {
			return []string{"Try speaking a bit louder and clearer!"}
		}
		return []string{"Try speaking a bit louder and clearer"}
	case score < 70:
		if group.Young() {
			return []string{"Good effort! Keep practicing speaking clearly!"}
		}
		return []string{"Good effort! Some words were unclear, practice speaking with confidence"}
	default:
		if group.Young() {
			return []string{"Great job! Your words were easy to understand!"}
		}
		return []string{"Great clarity! Your words were easy to understand"}
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
