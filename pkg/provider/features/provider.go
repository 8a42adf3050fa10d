// Package features defines the audio feature extraction provider interface:
// loudness, pitch and energy statistics derived from the raw waveform, used
// by the audio-based evaluation metrics.
package features

import (
	"context"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// LoudnessClass categorizes the average speaking volume.
type LoudnessClass string

const (
	LoudnessTooSoft LoudnessClass = "too_soft"
	LoudnessOptimal LoudnessClass = "optimal"
	LoudnessTooLoud LoudnessClass = "too_loud"
	LoudnessNoAudio LoudnessClass = "no_audio"
)

// PitchClass categorizes the pitch variation of voiced speech.
type PitchClass string

const (
	PitchMonotone     PitchClass = "monotone"
	PitchExpressive   PitchClass = "expressive"
	PitchErratic      PitchClass = "erratic"
	PitchInsufficient PitchClass = "insufficient_data"
)

// StaminaClass categorizes energy consistency over the speech.
type StaminaClass string

const (
	StaminaConsistent   StaminaClass = "consistent"
	StaminaFading       StaminaClass = "fading"
	StaminaInconsistent StaminaClass = "inconsistent"
	StaminaNotAnalyzed  StaminaClass = "not_analyzed"
)

// Loudness holds RMS energy statistics.
type Loudness struct {
	RMSMean        float64       `json:"rms_mean"`
	RMSStd         float64       `json:"rms_std"`
	DBMean         float64       `json:"rms_db_mean"`
	DBStd          float64       `json:"rms_db_std"`
	RMSOverTime    []float64     `json:"rms_over_time,omitempty"`
	Classification LoudnessClass `json:"classification"`
}

// Pitch holds fundamental-frequency statistics over voiced frames.
type Pitch struct {
	Mean           float64    `json:"pitch_mean"`
	Std            float64    `json:"pitch_std"`
	Min            float64    `json:"pitch_min"`
	Max            float64    `json:"pitch_max"`
	VoicedRatio    float64    `json:"voiced_ratio"`
	Classification PitchClass `json:"classification"`
}

// Stamina holds per-segment energy statistics for endurance analysis.
type Stamina struct {
	Segments       []float64    `json:"energy_segments,omitempty"`
	Dropoff        float64      `json:"energy_dropoff"`
	Consistency    float64      `json:"energy_consistency"`
	Classification StaminaClass `json:"classification"`
}

// Features is the complete set of audio features for one recording.
type Features struct {
	Loudness   Loudness      `json:"loudness"`
	Pitch      Pitch         `json:"pitch"`
	Stamina    Stamina       `json:"stamina"`
	Duration   time.Duration `json:"-"`
	SampleRate int           `json:"sample_rate"`
}

// Valid reports whether the features carry usable signal statistics.
func (f *Features) Valid() bool {
	return f != nil && f.Loudness.RMSMean > 0
}

// Provider extracts audio features from preprocessed audio. Implementations
// must be safe for concurrent use; extraction runs in parallel with
// transcription.
type Provider interface {
	Extract(ctx context.Context, audio preprocess.Audio) (*Features, error)
}
