// Package mock provides a scripted preprocess.Provider for tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// Compile-time assertion that Provider satisfies preprocess.Provider.
var _ preprocess.Provider = (*Provider)(nil)

// Provider returns canned audio or errors, recording every call.
type Provider struct {
	mu sync.Mutex

	Audio      preprocess.Audio
	ProbeErr   error
	ProcessErr error

	ProbeCalls   int
	ProcessCalls int
}

// NewSilent returns a mock that yields dur of silence at 16 kHz.
func NewSilent(dur time.Duration) *Provider {
	n := int(dur.Seconds() * 16000)
	return &Provider{Audio: preprocess.Audio{Samples: make([]float32, n), SampleRate: 16000}}
}

func (p *Provider) Probe(raw []byte) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ProbeCalls++
	if p.ProbeErr != nil {
		return 0, p.ProbeErr
	}
	return p.Audio.Duration(), nil
}

func (p *Provider) Process(ctx context.Context, raw []byte) (preprocess.Audio, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ProcessCalls++
	if p.ProcessErr != nil {
		return preprocess.Audio{}, p.ProcessErr
	}
	return p.Audio, nil
}
