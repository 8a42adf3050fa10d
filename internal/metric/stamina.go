package metric

import (
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/features"
)

// Compile-time assertion that Stamina satisfies Evaluator.
var _ Evaluator = (*Stamina)(nil)

// Stamina scores energy consistency: whether the speaker keeps their level
// up or fades towards the end. Recordings shorter than the minimum duration
// get a full score since there is nothing meaningful to fade over. Younger
// speakers take a reduced penalty.
type Stamina struct {
	minDuration time.Duration
}

// Stamina scoring thresholds.
const (
	staminaGoodDropoff    = 0.75
	staminaWarningDropoff = 0.50
	staminaConsistency    = 0.25
)

// StaminaDetail is attached to the stamina result.
type StaminaDetail struct {
	Classification features.StaminaClass `json:"classification"`
	EnergyDropoff  float64               `json:"energy_dropoff"`
	Consistency    float64               `json:"energy_consistency"`
	Segments       []float64             `json:"energy_segments,omitempty"`
}

// NewStamina creates the stamina evaluator.
func NewStamina(cfg Config) *Stamina {
	return &Stamina{minDuration: cfg.MinStaminaDuration}
}

func (s *Stamina) ID() evaluation.MetricID { return evaluation.MetricStamina }

func (s *Stamina) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	if !in.Features.Valid() {
		return degraded(evaluation.MetricStamina, "Audio features not available"), nil
	}

	if in.Features.Duration < s.minDuration {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricStamina,
			Score:    100,
			Feedback: []string{"Speech too short to analyze stamina"},
			Detail: StaminaDetail{
				Classification: features.StaminaNotAnalyzed,
				EnergyDropoff:  1,
				Consistency:    1,
			},
		}, nil
	}

	st := in.Features.Stamina
	if len(st.Segments) == 0 {
		return degraded(evaluation.MetricStamina, "Energy analysis not available"), nil
	}

	// Dropoff contributes up to 60 points, consistency up to 40.
	var dropoffScore float64
	switch {
	case st.Dropoff >= staminaGoodDropoff:
		dropoffScore = 60
	case st.Dropoff >= staminaWarningDropoff:
		dropoffScore = 30 + 30*(st.Dropoff-staminaWarningDropoff)/(staminaGoodDropoff-staminaWarningDropoff)
	default:
		dropoffScore = 30 * st.Dropoff / staminaWarningDropoff
	}

	consistencyScore := 40.0
	if st.Consistency < staminaConsistency {
		consistencyScore = 40 * st.Consistency / staminaConsistency
	}

	final := evaluation.ClampScore(dropoffScore + consistencyScore)
	if in.Profile.Group.Young() && final < 70 {
		final = min(80, final+20)
	}

	return evaluation.MetricResult{
		Metric:   evaluation.MetricStamina,
		Score:    final,
		Feedback: s.feedback(st.Classification, in.Profile.Group),
		Detail: StaminaDetail{
			Classification: st.Classification,
			EnergyDropoff:  round3(st.Dropoff),
			Consistency:    round3(st.Consistency),
			Segments:       st.Segments,
		},
	}, nil
}

func (s *Stamina) feedback(class features.StaminaClass, group evaluation.Group) []string {
	switch class {
	case features.StaminaFading:
		switch group {
		case evaluation.GroupPrePrimary:
			return []string{"You started strong! Try to stay loud until the end!"}
		case evaluation.GroupLowerPrimary:
			return []string{"Great start! Try to keep your energy up until the very end!"}
		default:
			return []string{"Your energy dropped towards the end. Try to finish as strong as you started!"}
		}
	case features.StaminaInconsistent:
		if group.Young() {
			return []string{"Try to keep your voice the same volume from start to finish!"}
		}
		return []string{"Try to maintain steady energy from start to finish."}
	default:
		if group == evaluation.GroupPrePrimary {
			return []string{"You kept going strong the whole time! Amazing!"}
		}
		return []string{"Great job keeping your energy up throughout!"}
	}
}
