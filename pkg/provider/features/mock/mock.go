// Package mock provides a scripted features.Provider for tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/orato/pkg/provider/features"
	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// Compile-time assertion that Provider satisfies features.Provider.
var _ features.Provider = (*Provider)(nil)

// Provider returns canned features or an error, recording every call.
type Provider struct {
	mu sync.Mutex

	Features *features.Features
	Err      error

	Calls int
}

// Healthy returns features of a well-delivered speech: optimal loudness,
// expressive pitch and consistent energy over the given duration.
func Healthy(dur time.Duration) *features.Features {
	return &features.Features{
		Loudness: features.Loudness{
			RMSMean:        0.12,
			RMSStd:         0.02,
			DBMean:         -18,
			DBStd:          3,
			Classification: features.LoudnessOptimal,
		},
		Pitch: features.Pitch{
			Mean:           260,
			Std:            45,
			Min:            180,
			Max:            360,
			VoicedRatio:    0.7,
			Classification: features.PitchExpressive,
		},
		Stamina: features.Stamina{
			Segments:       []float64{0.12, 0.11, 0.12, 0.11},
			Dropoff:        0.92,
			Consistency:    0.95,
			Classification: features.StaminaConsistent,
		},
		Duration:   dur,
		SampleRate: 16000,
	}
}

func (p *Provider) Extract(ctx context.Context, audio preprocess.Audio) (*features.Features, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Features, nil
}
