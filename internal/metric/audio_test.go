package metric

import (
	"testing"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/features"
	featuremock "github.com/MrWong99/orato/pkg/provider/features/mock"
)

func healthyInputs(t *testing.T, age int, dur time.Duration) Inputs {
	t.Helper()
	return Inputs{
		Features: featuremock.Healthy(dur),
		Duration: dur,
		Profile:  profileFor(t, age),
	}
}

func TestAudioMetricsDegradeWithoutFeatures(t *testing.T) {
	t.Parallel()

	in := Inputs{Duration: 30 * time.Second, Profile: profileFor(t, 12)}
	for _, eval := range []Evaluator{NewLoudness(), NewPitchVariation(), NewStamina(Default())} {
		res, err := eval.Evaluate(in)
		if err != nil {
			t.Fatalf("%s: Evaluate failed: %v", eval.ID(), err)
		}
		if !res.Degraded {
			t.Errorf("%s: result not marked degraded without audio features", eval.ID())
		}
		if res.Score != 70 {
			t.Errorf("%s: degraded score = %d, want 70", eval.ID(), res.Score)
		}
	}
}

func TestLoudnessScoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		db    float64
		class features.LoudnessClass
		want  int
	}{
		{"optimal", -18, features.LoudnessOptimal, 100},
		{"soft band", -28, features.LoudnessTooSoft, 70},
		{"very soft", -43, features.LoudnessTooSoft, 28},
		{"loud band", -10, features.LoudnessOptimal, 90},
		{"very loud", -5, features.LoudnessTooLoud, 85},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := healthyInputs(t, 12, 30*time.Second)
			in.Features.Loudness.DBMean = tc.db
			in.Features.Loudness.Classification = tc.class
			res, err := NewLoudness().Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if res.Score != tc.want {
				t.Errorf("loudness score at %.0f dB = %d, want %d", tc.db, res.Score, tc.want)
			}
			if res.Degraded {
				t.Error("result unexpectedly marked degraded")
			}
		})
	}
}

func TestLoudnessFlagsInconsistency(t *testing.T) {
	t.Parallel()

	in := healthyInputs(t, 12, 30*time.Second)
	in.Features.Loudness.DBStd = 12
	res, err := NewLoudness().Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	detail := res.Detail.(LoudnessDetail)
	if detail.IsConsistent {
		t.Errorf("detail = %+v, want inconsistent at dB std 12", detail)
	}
}

func TestPitchVariationScoring(t *testing.T) {
	t.Parallel()

	t.Run("expressive", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 12, 30*time.Second)
		res, err := NewPitchVariation().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 84 {
			t.Errorf("expressive score = %d, want 84", res.Score)
		}
	})

	t.Run("monotone", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 12, 30*time.Second)
		in.Features.Pitch.Std = 8
		in.Features.Pitch.Classification = features.PitchMonotone
		res, err := NewPitchVariation().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 56 {
			t.Errorf("monotone score = %d, want 56", res.Score)
		}
	})

	t.Run("monotone preschooler floor", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 4, 30*time.Second)
		in.Features.Pitch.Std = 8
		in.Features.Pitch.Classification = features.PitchMonotone
		res, err := NewPitchVariation().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 70 {
			t.Errorf("preschooler monotone score = %d, want floor of 70", res.Score)
		}
	})

	t.Run("insufficient voiced speech", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 12, 30*time.Second)
		in.Features.Pitch.Classification = features.PitchInsufficient
		in.Features.Pitch.VoicedRatio = 0.05
		res, err := NewPitchVariation().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 50 {
			t.Errorf("insufficient-data score = %d, want 50", res.Score)
		}

		in.Profile = profileFor(t, 4)
		res, err = NewPitchVariation().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 70 {
			t.Errorf("preschooler insufficient-data score = %d, want 70", res.Score)
		}
	})
}

func TestStaminaScoring(t *testing.T) {
	t.Parallel()

	t.Run("consistent", func(t *testing.T) {
		t.Parallel()
		res, err := NewStamina(Default()).Evaluate(healthyInputs(t, 12, 45*time.Second))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 100 {
			t.Errorf("stamina score = %d, want 100", res.Score)
		}
	})

	t.Run("short speech skipped", func(t *testing.T) {
		t.Parallel()
		res, err := NewStamina(Default()).Evaluate(healthyInputs(t, 12, 10*time.Second))
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 100 {
			t.Errorf("short-speech score = %d, want 100", res.Score)
		}
		detail := res.Detail.(StaminaDetail)
		if detail.Classification != features.StaminaNotAnalyzed {
			t.Errorf("classification = %q, want %q", detail.Classification, features.StaminaNotAnalyzed)
		}
	})

	t.Run("fading energy", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 12, 45*time.Second)
		in.Features.Stamina.Dropoff = 0.4
		in.Features.Stamina.Consistency = 0.9
		in.Features.Stamina.Classification = features.StaminaFading
		res, err := NewStamina(Default()).Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		// 30*0.4/0.5 dropoff points plus full consistency points.
		if res.Score != 64 {
			t.Errorf("fading score = %d, want 64", res.Score)
		}
	})

	t.Run("young speakers get a boost", func(t *testing.T) {
		t.Parallel()
		in := healthyInputs(t, 7, 45*time.Second)
		in.Features.Stamina.Dropoff = 0.4
		in.Features.Stamina.Consistency = 0.9
		in.Features.Stamina.Classification = features.StaminaFading
		res, err := NewStamina(Default()).Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 80 {
			t.Errorf("young fading score = %d, want 80", res.Score)
		}
	})
}

func TestAllReturnsEvaluatorsInCanonicalOrder(t *testing.T) {
	t.Parallel()

	evals := All(Default())
	if len(evals) != len(evaluation.MetricOrder) {
		t.Fatalf("All returned %d evaluators, want %d", len(evals), len(evaluation.MetricOrder))
	}
	for i, eval := range evals {
		if eval.ID() != evaluation.MetricOrder[i] {
			t.Errorf("evaluator %d = %s, want %s", i, eval.ID(), evaluation.MetricOrder[i])
		}
	}
}
