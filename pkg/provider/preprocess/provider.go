// Package preprocess defines the audio preprocessing provider interface:
// turning an uploaded recording into normalized mono PCM ready for
// transcription and feature extraction.
package preprocess

import (
	"context"
	"time"
)

// Audio is a decoded, normalized recording: mono float32 samples in [-1, 1]
// at a fixed sample rate.
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the audio length.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(a.Samples)) / float64(a.SampleRate) * float64(time.Second))
}

// Provider decodes raw uploads into analysis-ready audio.
//
// Probe is a cheap validity check run synchronously at submission time, so
// malformed or empty uploads are rejected before a job is ever created.
// Process does the full decode, downmix, resample and normalization work.
type Provider interface {
	Probe(raw []byte) (time.Duration, error)
	Process(ctx context.Context, raw []byte) (Audio, error)
}
