package metric

import (
	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/features"
)

// Compile-time assertion that PitchVariation satisfies Evaluator.
var _ Evaluator = (*PitchVariation)(nil)

// PitchVariation scores vocal expression from the standard deviation of the
// tracked pitch. Monotone delivery scores low, controlled variety high;
// erratic pitch still shows expression and only takes a mild penalty.
// Pre-primary speakers get the benefit of the doubt throughout.
type PitchVariation struct{}

// Thresholds for pitch standard deviation in Hz.
const (
	pitchMonotoneStd = 15.0
	pitchErraticStd  = 100.0
)

// PitchDetail is attached to the pitch variation result.
type PitchDetail struct {
	Classification features.PitchClass `json:"classification"`
	PitchMean      float64             `json:"pitch_mean"`
	PitchStd       float64             `json:"pitch_std"`
	PitchMin       float64             `json:"pitch_min"`
	PitchMax       float64             `json:"pitch_max"`
	VoicedRatio    float64             `json:"voiced_ratio"`
}

// NewPitchVariation creates the pitch variation evaluator.
func NewPitchVariation() *PitchVariation { return &PitchVariation{} }

func (p *PitchVariation) ID() evaluation.MetricID { return evaluation.MetricPitchVariation }

func (p *PitchVariation) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	if !in.Features.Valid() {
		return degraded(evaluation.MetricPitchVariation, "Audio features not available"), nil
	}

	pitch := in.Features.Pitch
	if pitch.Classification == features.PitchInsufficient || pitch.VoicedRatio < 0.1 {
		if in.Profile.Group == evaluation.GroupPrePrimary {
			return evaluation.MetricResult{
				Metric:   evaluation.MetricPitchVariation,
				Score:    70,
				Feedback: []string{"Keep practicing your speaking!"},
				Detail:   PitchDetail{Classification: features.PitchInsufficient, VoicedRatio: round3(pitch.VoicedRatio)},
			}, nil
		}
		return evaluation.MetricResult{
			Metric:   evaluation.MetricPitchVariation,
			Score:    50,
			Feedback: []string{"Not enough voiced speech to analyze expression"},
			Detail:   PitchDetail{Classification: features.PitchInsufficient, VoicedRatio: round3(pitch.VoicedRatio)},
		}, nil
	}

	std := pitch.Std
	var score float64
	switch pitch.Classification {
	case features.PitchMonotone:
		// From 40 at zero variation up to 70 at the monotone threshold.
		score = 40 + 30*std/pitchMonotoneStd
	case features.PitchErratic:
		excess := std - pitchErraticStd
		score = 80 - min(30, excess*0.3)
	default:
		middle := (pitchMonotoneStd + pitchErraticStd) / 2
		if std <= middle {
			score = 70 + 20*(std-pitchMonotoneStd)/(middle-pitchMonotoneStd)
		} else {
			score = 90 + 10*(1-(std-middle)/(pitchErraticStd-middle))
		}
	}
	final := evaluation.ClampScore(score)

	if in.Profile.Group == evaluation.GroupPrePrimary && final < 60 {
		final = min(70, final+20)
	}

	return evaluation.MetricResult{
		Metric:   evaluation.MetricPitchVariation,
		Score:    final,
		Feedback: p.feedback(pitch.Classification, in.Profile.Group),
		Detail: PitchDetail{
			Classification: pitch.Classification,
			PitchMean:      round2(pitch.Mean),
			PitchStd:       round2(std),
			PitchMin:       round2(pitch.Min),
			PitchMax:       round2(pitch.Max),
			VoicedRatio:    round3(pitch.VoicedRatio),
		},
	}, nil
}

func (p *PitchVariation) feedback(class features.PitchClass, group evaluation.Group) []string {
	switch class {
	case features.PitchMonotone:
		switch group {
		case evaluation.GroupPrePrimary:
			return []string{"Try making your voice go up and down like a roller coaster!"}
		case evaluation.GroupLowerPrimary:
			return []string{"Try adding more expression - make your voice go high and low!"}
		default:
			return []string{"Try adding more expression to your voice - go up and down like a roller coaster!"}
		}
	case features.PitchErratic:
		switch group {
		case evaluation.GroupPrePrimary:
			return []string{"Great energy! Your voice is very bouncy!"}
		case evaluation.GroupLowerPrimary:
			return []string{"Good energy! Try to control your voice a bit more."}
		default:
			return []string{"Good energy! Try to control your pitch a bit more."}
		}
	default:
		switch group {
		case evaluation.GroupPrePrimary:
			return []string{"Your voice sounds so interesting!"}
		case evaluation.GroupLowerPrimary:
			return []string{"Great expression! Your voice has nice variety!"}
		default:
			return []string{"Great expression! Your voice has nice variety."}
		}
	}
}
