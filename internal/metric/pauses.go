package metric

import (
	"fmt"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
)

// Compile-time assertion that Pauses satisfies Evaluator.
var _ Evaluator = (*Pauses)(nil)

// Pauses scores pause management from inter-word gaps. The share of time
// spent in long pauses is compared against the age profile's tolerance;
// every pause beyond the excessive threshold costs a flat penalty on top.
// Word timestamps make this robust against background noise.
type Pauses struct {
	longPause      time.Duration
	excessivePause time.Duration
}

// PausesDetail is attached to the pause management result.
type PausesDetail struct {
	TotalPauses     int     `json:"total_pauses"`
	LongPauses      int     `json:"long_pauses"`
	ExcessivePauses int     `json:"excessive_pauses"`
	LongPauseRatio  float64 `json:"long_pause_ratio"`
}

// NewPauses creates the pause management evaluator.
func NewPauses(cfg Config) *Pauses {
	return &Pauses{longPause: cfg.LongPause, excessivePause: cfg.ExcessivePause}
}

func (p *Pauses) ID() evaluation.MetricID { return evaluation.MetricPauseManagement }

func (p *Pauses) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	words := in.Transcript.Words
	if len(words) < 2 {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricPauseManagement,
			Score:    100,
			Feedback: []string{"Not enough speech to evaluate pauses"},
			Detail:   PausesDetail{},
		}, nil
	}

	var (
		total, long, excessive int
		longTime               time.Duration
	)
	for i := range len(words) - 1 {
		gap := words[i+1].Start - words[i].End
		if gap <= 0 {
			continue
		}
		total++
		if gap > p.longPause {
			long++
			longTime += gap
		}
		if gap > p.excessivePause {
			excessive++
		}
	}

	ratio := 0.0
	if in.Duration > 0 {
		ratio = longTime.Seconds() / in.Duration.Seconds()
	}

	score := 100.0
	if ratio > in.Profile.PauseTolerance {
		score = 100 - (ratio-in.Profile.PauseTolerance)*200
	}
	score -= float64(excessive) * 10
	final := evaluation.ClampScore(score)

	return evaluation.MetricResult{
		Metric:   evaluation.MetricPauseManagement,
		Score:    final,
		Feedback: p.feedback(long, excessive, in.Profile.Group),
		Detail: PausesDetail{
			TotalPauses:     total,
			LongPauses:      long,
			ExcessivePauses: excessive,
			LongPauseRatio:  round3(ratio),
		},
	}, nil
}

func (p *Pauses) feedback(long, excessive int, group evaluation.Group) []string {
	switch {
	case excessive > 0:
		if group.Young() {
			return []string{fmt.Sprintf("You had %d really long pauses. Try to keep talking!", excessive)}
		}
		return []string{fmt.Sprintf("You had %d very long pauses (>4 seconds). Try to keep moving forward", excessive)}
	case long > 3:
		if group.Young() {
			return []string{"You have some long pauses. It's okay to pause briefly!"}
		}
		return []string{"You have several long pauses. It's okay to pause, but try to keep them brief"}
	case long > 0:
		return []string{"Good control of pauses! Just a few long ones"}
	default:
		return []string{"Excellent! No excessive pauses detected"}
	}
}
