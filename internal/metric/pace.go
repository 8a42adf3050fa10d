package metric

import (
	"fmt"

	"github.com/MrWong99/orato/internal/evaluation"
)

// Compile-time assertion that Pace satisfies Evaluator.
var _ Evaluator = (*Pace)(nil)

// Pace scores speaking speed in words per minute against the age profile's
// ideal range. Inside the range scores 100; outside it decays strictly with
// distance, proportional to the ratio of actual to ideal speed.
type Pace struct{}

// PaceDetail is attached to the pace result.
type PaceDetail struct {
	WPM        float64 `json:"words_per_minute"`
	IdealRange string  `json:"ideal_range"`
	WordCount  int     `json:"word_count"`
}

// NewPace creates the pace evaluator.
func NewPace() *Pace { return &Pace{} }

func (p *Pace) ID() evaluation.MetricID { return evaluation.MetricPace }

func (p *Pace) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	words := in.Transcript.WordCount()
	minutes := in.Duration.Minutes()
	if words == 0 || minutes <= 0 {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricPace,
			Score:    0,
			Feedback: []string{"No speech detected"},
			Detail:   PaceDetail{IdealRange: "N/A"},
		}, nil
	}

	wpm := float64(words) / minutes
	idealMin := float64(in.Profile.MinWPM)
	idealMax := float64(in.Profile.MaxWPM)

	var score int
	switch {
	case wpm >= idealMin && wpm <= idealMax:
		score = 100
	case wpm < idealMin:
		score = evaluation.ClampScore(wpm / idealMin * 100)
	default:
		score = evaluation.ClampScore(idealMax / wpm * 100)
	}

	return evaluation.MetricResult{
		Metric:   evaluation.MetricPace,
		Score:    score,
		Feedback: p.feedback(wpm, idealMin, idealMax, in.Profile.Group),
		Detail: PaceDetail{
			WPM:        round2(wpm),
			IdealRange: fmt.Sprintf("%d-%d wpm", in.Profile.MinWPM, in.Profile.MaxWPM),
			WordCount:  words,
		},
	}, nil
}

func (p *Pace) feedback(wpm, idealMin, idealMax float64, group evaluation.Group) []string {
	switch {
	case wpm < idealMin:
		if group.Young() {
			return []string{fmt.Sprintf("Try speaking a little faster! (%d words per minute)", int(wpm))}
		}
		return []string{fmt.Sprintf("Your pace is a bit slow (%d words/min). Try speaking a little faster", int(wpm))}
	case wpm > idealMax:
		if group.Young() {
			return []string{fmt.Sprintf("Great energy! Try slowing down just a little (%d words per minute)", int(wpm))}
		}
		return []string{fmt.Sprintf("Your pace is quite fast (%d words/min). Take your time and slow down", int(wpm))}
	default:
		if group.Young() {
			return []string{fmt.Sprintf("Perfect speed! (%d words per minute)", int(wpm))}
		}
		return []string{fmt.Sprintf("Excellent pace! (%d words/min)", int(wpm))}
	}
}
