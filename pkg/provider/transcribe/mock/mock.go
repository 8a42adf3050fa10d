// Package mock provides a scripted transcribe.Provider for tests.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
	"github.com/MrWong99/orato/pkg/provider/transcribe"
)

// Compile-time assertion that Provider satisfies transcribe.Provider.
var _ transcribe.Provider = (*Provider)(nil)

// Provider returns a canned transcript or error, recording every call.
type Provider struct {
	mu sync.Mutex

	Transcript *transcribe.Transcript
	Err        error

	Calls int
}

// FromText builds a transcript by spacing the given words evenly across dur,
// all with the given confidence. Handy for metric and pipeline tests.
func FromText(text string, dur time.Duration, confidence float64) *transcribe.Transcript {
	fields := strings.Fields(text)
	tr := &transcribe.Transcript{Text: text, Language: "en"}
	if len(fields) == 0 {
		return tr
	}
	slot := dur / time.Duration(len(fields))
	for i, f := range fields {
		start := time.Duration(i) * slot
		tr.Words = append(tr.Words, transcribe.Word{
			Text:       f,
			Start:      start,
			End:        start + slot*8/10,
			Confidence: confidence,
		})
	}
	tr.Segments = []transcribe.Segment{{Text: text, Start: 0, End: dur}}
	return tr
}

func (p *Provider) Transcribe(ctx context.Context, audio preprocess.Audio) (*transcribe.Transcript, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Transcript, nil
}
