// Package native implements features.Provider with pure-Go signal analysis:
// windowed RMS energy for loudness, normalized autocorrelation for pitch
// tracking and segment energies for stamina.
package native

import (
	"context"
	"fmt"
	"math"

	"github.com/MrWong99/orato/pkg/provider/features"
	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// Compile-time assertion that Extractor satisfies features.Provider.
var _ features.Provider = (*Extractor)(nil)

const (
	defaultFrameLength = 2048
	defaultHopLength   = 512
	defaultSegments    = 4

	// Pitch search band, generous enough for both children and adolescents.
	defaultFMin = 65.0
	defaultFMax = 500.0

	// Loudness classification thresholds in dB full scale.
	tooSoftDB = -30.0
	tooLoudDB = -8.0

	// Pitch variation classification thresholds, std in Hz.
	monotoneStd = 15.0
	erraticStd  = 100.0

	minVoicedRatio = 0.3

	// Voicing decision per frame.
	voicedEnergyFloor = 1e-3
	voicedClarity     = 0.5

	// Stamina classification.
	goodDropoff          = 0.75
	warningDropoff       = 0.50
	consistencyThreshold = 0.25

	// Floor for dB conversion of near-silent frames.
	silenceFloorDB = -100.0
)

// Extractor computes audio features frame by frame.
type Extractor struct {
	frameLength int
	hopLength   int
	segments    int
	fMin, fMax  float64
}

// Option is a functional option for configuring an Extractor.
type Option func(*Extractor)

// WithFrameLength sets the analysis window size in samples.
func WithFrameLength(n int) Option {
	return func(e *Extractor) { e.frameLength = n }
}

// WithHopLength sets the hop between analysis windows in samples.
func WithHopLength(n int) Option {
	return func(e *Extractor) { e.hopLength = n }
}

// WithSegments sets the number of segments for stamina analysis.
func WithSegments(n int) Option {
	return func(e *Extractor) { e.segments = n }
}

// New creates an Extractor with librosa-compatible defaults (2048 sample
// frames, 512 sample hop).
func New(opts ...Option) *Extractor {
	e := &Extractor{
		frameLength: defaultFrameLength,
		hopLength:   defaultHopLength,
		segments:    defaultSegments,
		fMin:        defaultFMin,
		fMax:        defaultFMax,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract computes loudness, pitch and stamina features for the recording.
func (e *Extractor) Extract(ctx context.Context, audio preprocess.Audio) (*features.Features, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("features: context already cancelled: %w", err)
	}
	if len(audio.Samples) == 0 || audio.SampleRate <= 0 {
		return nil, fmt.Errorf("features: empty audio")
	}

	loudness := e.extractLoudness(audio.Samples)
	pitch := e.extractPitch(audio.Samples, audio.SampleRate)
	stamina := e.extractStamina(loudness.RMSOverTime)

	return &features.Features{
		Loudness:   loudness,
		Pitch:      pitch,
		Stamina:    stamina,
		Duration:   audio.Duration(),
		SampleRate: audio.SampleRate,
	}, nil
}

func (e *Extractor) frames(samples []float32) int {
	if len(samples) < e.frameLength {
		return 1
	}
	return 1 + (len(samples)-e.frameLength)/e.hopLength
}

func (e *Extractor) extractLoudness(samples []float32) features.Loudness {
	n := e.frames(samples)
	rms := make([]float64, 0, n)
	db := make([]float64, 0, n)
	for i := range n {
		start := i * e.hopLength
		end := min(start+e.frameLength, len(samples))
		var sum float64
		for _, s := range samples[start:end] {
			sum += float64(s) * float64(s)
		}
		r := math.Sqrt(sum / float64(end-start))
		rms = append(rms, r)
		db = append(db, amplitudeToDB(r))
	}

	rmsMean, rmsStd := meanStd(rms)
	dbMean, dbStd := meanStd(db)

	class := features.LoudnessOptimal
	switch {
	case rmsMean == 0:
		class = features.LoudnessNoAudio
	case dbMean < tooSoftDB:
		class = features.LoudnessTooSoft
	case dbMean > tooLoudDB:
		class = features.LoudnessTooLoud
	}

	return features.Loudness{
		RMSMean:        rmsMean,
		RMSStd:         rmsStd,
		DBMean:         dbMean,
		DBStd:          dbStd,
		RMSOverTime:    rms,
		Classification: class,
	}
}

// extractPitch tracks the fundamental frequency per frame with normalized
// autocorrelation and classifies the variation of the voiced frames.
func (e *Extractor) extractPitch(samples []float32, sampleRate int) features.Pitch {
	minLag := int(float64(sampleRate) / e.fMax)
	maxLag := int(float64(sampleRate) / e.fMin)
	if minLag < 1 || maxLag >= e.frameLength {
		return features.Pitch{Classification: features.PitchInsufficient}
	}

	n := e.frames(samples)
	var voiced []float64
	total := 0
	for i := range n {
		start := i * e.hopLength
		end := min(start+e.frameLength, len(samples))
		frame := samples[start:end]
		if len(frame) <= maxLag {
			continue
		}
		total++
		if f0, ok := trackFrame(frame, sampleRate, minLag, maxLag); ok {
			voiced = append(voiced, f0)
		}
	}

	if total == 0 {
		return features.Pitch{Classification: features.PitchInsufficient}
	}
	ratio := float64(len(voiced)) / float64(total)
	if ratio < minVoicedRatio || len(voiced) < 5 {
		return features.Pitch{VoicedRatio: ratio, Classification: features.PitchInsufficient}
	}

	mean, std := meanStd(voiced)
	minF, maxF := voiced[0], voiced[0]
	for _, f := range voiced {
		minF = math.Min(minF, f)
		maxF = math.Max(maxF, f)
	}

	class := features.PitchExpressive
	switch {
	case std < monotoneStd:
		class = features.PitchMonotone
	case std > erraticStd:
		class = features.PitchErratic
	}

	return features.Pitch{
		Mean:           mean,
		Std:            std,
		Min:            minF,
		Max:            maxF,
		VoicedRatio:    ratio,
		Classification: class,
	}
}

// trackFrame estimates the fundamental frequency of one frame. A frame
// counts as voiced when it carries enough energy and the best autocorrelation
// peak is clear.
func trackFrame(frame []float32, sampleRate, minLag, maxLag int) (float64, bool) {
	var energy float64
	for _, s := range frame {
		energy += float64(s) * float64(s)
	}
	if energy/float64(len(frame)) < voicedEnergyFloor {
		return 0, false
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag && lag < len(frame); lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += float64(frame[i]) * float64(frame[i+lag])
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr < voicedClarity {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}

// extractStamina splits the RMS curve into equal segments and compares the
// energy of the last segment against the first.
func (e *Extractor) extractStamina(rmsOverTime []float64) features.Stamina {
	if len(rmsOverTime) < e.segments || e.segments < 2 {
		return features.Stamina{Dropoff: 1, Consistency: 1, Classification: features.StaminaNotAnalyzed}
	}

	segLen := len(rmsOverTime) / e.segments
	segments := make([]float64, 0, e.segments)
	for i := range e.segments {
		start := i * segLen
		end := start + segLen
		if i == e.segments-1 {
			end = len(rmsOverTime)
		}
		m, _ := meanStd(rmsOverTime[start:end])
		segments = append(segments, m)
	}

	dropoff := 1.0
	if segments[0] > 0 {
		dropoff = segments[len(segments)-1] / segments[0]
	}

	mean, std := meanStd(segments)
	consistency := 0.0
	if mean > 0 {
		consistency = math.Max(0, 1-std/mean)
	}

	class := features.StaminaInconsistent
	switch {
	case dropoff >= goodDropoff && consistency >= consistencyThreshold:
		class = features.StaminaConsistent
	case dropoff < warningDropoff:
		class = features.StaminaFading
	}

	return features.Stamina{
		Segments:       segments,
		Dropoff:        dropoff,
		Consistency:    consistency,
		Classification: class,
	}
}

func amplitudeToDB(amp float64) float64 {
	if amp <= 0 {
		return silenceFloorDB
	}
	return math.Max(silenceFloorDB, 20*math.Log10(amp))
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
