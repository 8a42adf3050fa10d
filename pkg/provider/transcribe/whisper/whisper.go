// This file contains the whisper.cpp-backed transcribe.Provider. The
// whisper.cpp static library (libwhisper.a) and headers (whisper.h) must be
// available at link time via LIBRARY_PATH and C_INCLUDE_PATH environment
// variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
	"github.com/MrWong99/orato/pkg/provider/transcribe"
	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Compile-time assertion that Provider satisfies transcribe.Provider.
var _ transcribe.Provider = (*Provider)(nil)

const defaultLanguage = "en"

// Provider implements transcribe.Provider using the whisper.cpp CGO
// bindings. The model is loaded once at startup and shared across all jobs;
// each transcription runs on its own whisper context, so concurrent jobs do
// not interfere.
type Provider struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the BCP-47 language code for transcription (e.g. "en",
// "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from the given
// file path. The caller must call Close when the provider is no longer
// needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{model: model, language: defaultLanguage}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp over the full recording and assembles a
// word-level transcript. Token timestamps are enabled so the pace, pause and
// clarity metrics get per-word timing and confidence.
func (p *Provider) Transcribe(ctx context.Context, audio preprocess.Audio) (*transcribe.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(audio.Samples) == 0 {
		return nil, errors.New("whisper: no audio samples")
	}

	// Each context is NOT thread-safe, but the model can be shared across
	// goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(p.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", p.language, "error", err)
	}
	wctx.SetTokenTimestamps(true)

	if err := wctx.Process(audio.Samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	tr := &transcribe.Transcript{Language: p.language}
	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		tr.Segments = append(tr.Segments, transcribe.Segment{
			Text:  text,
			Start: segment.Start,
			End:   segment.End,
		})
		tr.Words = append(tr.Words, wordsFromTokens(segment.Tokens)...)
	}
	tr.Text = strings.Join(parts, " ")

	return tr, nil
}

// wordsFromTokens folds whisper subword tokens into words. A token whose text
// starts with a space begins a new word; special tokens like [_BEG_] are
// skipped. Word confidence is the mean token probability.
func wordsFromTokens(tokens []whisperlib.Token) []transcribe.Word {
	var (
		words   []transcribe.Word
		current strings.Builder
		start   time.Duration
		end     time.Duration
		probSum float64
		nTokens int
	)

	flush := func() {
		if nTokens == 0 {
			return
		}
		text := strings.TrimSpace(current.String())
		if text != "" {
			words = append(words, transcribe.Word{
				Text:       text,
				Start:      start,
				End:        end,
				Confidence: probSum / float64(nTokens),
			})
		}
		current.Reset()
		probSum = 0
		nTokens = 0
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Text, "[_") {
			continue
		}
		if strings.HasPrefix(tok.Text, " ") && nTokens > 0 {
			flush()
		}
		if nTokens == 0 {
			start = tok.Start
		}
		current.WriteString(tok.Text)
		end = tok.End
		probSum += float64(tok.P)
		nTokens++
	}
	flush()

	return words
}
