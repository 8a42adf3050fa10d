package metric

import (
	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/features"
)

// Compile-time assertion that Loudness satisfies Evaluator.
var _ Evaluator = (*Loudness)(nil)

// Loudness scores voice strength from RMS energy. Scores peak inside the
// optimal dB band and fall off towards too-soft and too-loud extremes.
type Loudness struct{}

// Loudness scoring thresholds in dB full scale.
const (
	loudnessOptimalMin = -25.0
	loudnessOptimalMax = -12.0
	loudnessTooSoft    = -30.0
	loudnessTooLoud    = -8.0
	loudnessVariance   = 8.0
)

// LoudnessDetail is attached to the loudness result.
type LoudnessDetail struct {
	RMSDb          float64                `json:"rms_db"`
	RMSMean        float64                `json:"rms_mean"`
	Classification features.LoudnessClass `json:"classification"`
	Variance       float64                `json:"variance"`
	IsConsistent   bool                   `json:"is_consistent"`
}

// NewLoudness creates the loudness evaluator.
func NewLoudness() *Loudness { return &Loudness{} }

func (l *Loudness) ID() evaluation.MetricID { return evaluation.MetricLoudness }

func (l *Loudness) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	if !in.Features.Valid() {
		return degraded(evaluation.MetricLoudness, "Audio features not available"), nil
	}

	loud := in.Features.Loudness
	db := loud.DBMean

	var score float64
	switch {
	case db >= loudnessOptimalMin && db <= loudnessOptimalMax:
		score = 100
	case db < loudnessTooSoft:
		// Map -60 dB to 0 and the too-soft threshold to 50.
		score = max(0, 50*(db+60)/(loudnessTooSoft+60))
	case db < loudnessOptimalMin:
		score = 50 + 50*(db-loudnessTooSoft)/(loudnessOptimalMin-loudnessTooSoft)
	case db > loudnessTooLoud:
		score = max(50, 100-(db-loudnessTooLoud)*5)
	default:
		score = 100 - 20*(db-loudnessOptimalMax)/(loudnessTooLoud-loudnessOptimalMax)
	}
	final := evaluation.ClampScore(score)

	inconsistent := loud.DBStd > loudnessVariance

	return evaluation.MetricResult{
		Metric:   evaluation.MetricLoudness,
		Score:    final,
		Feedback: l.feedback(loud.Classification, inconsistent, in.Profile.Group),
		Detail: LoudnessDetail{
			RMSDb:          round2(db),
			RMSMean:        round3(loud.RMSMean),
			Classification: loud.Classification,
			Variance:       round2(loud.DBStd),
			IsConsistent:   !inconsistent,
		},
	}, nil
}

func (l *Loudness) feedback(class features.LoudnessClass, inconsistent bool, group evaluation.Group) []string {
	var fb []string
	switch class {
	case features.LoudnessTooSoft:
		switch group {
		case evaluation.GroupPrePrimary:
			fb = append(fb, "Try using your Lion Voice! ROAR so everyone can hear you!")
		case evaluation.GroupLowerPrimary:
			fb = append(fb, "Your voice is a bit quiet. Try speaking louder like a superhero!")
		default:
			fb = append(fb, "Your voice is a bit quiet. Try speaking louder so everyone can hear!")
		}
	case features.LoudnessTooLoud:
		switch group {
		case evaluation.GroupPrePrimary:
			fb = append(fb, "Wow, you're loud! Let's try your indoor voice!")
		case evaluation.GroupLowerPrimary:
			fb = append(fb, "Great energy! Try speaking just a bit softer.")
		default:
			fb = append(fb, "You have a powerful voice! Try speaking just a bit softer.")
		}
	default:
		switch group {
		case evaluation.GroupPrePrimary:
			fb = append(fb, "Perfect voice! You sound amazing!")
		default:
			fb = append(fb, "Great voice strength! You're easy to hear!")
		}
	}
	if inconsistent && !group.Young() {
		fb = append(fb, "Try to keep your voice at the same volume throughout.")
	}
	return fb
}
