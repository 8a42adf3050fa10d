// Package wav implements the preprocess.Provider interface for RIFF/WAVE
// uploads containing 16-bit PCM. Recordings are downmixed to mono, resampled
// to the target rate with linear interpolation and peak-normalized.
package wav

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/MrWong99/orato/pkg/provider/preprocess"
)

// Compile-time assertion that Provider satisfies preprocess.Provider.
var _ preprocess.Provider = (*Provider)(nil)

const (
	defaultTargetRate = 16000

	// Peak amplitude after normalization. Leaving headroom below full scale
	// keeps the dB-based loudness classification stable.
	normalizationPeak = 0.89
)

// Provider decodes 16-bit PCM WAV files.
type Provider struct {
	targetRate int
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTargetRate sets the output sample rate in Hz. Defaults to 16000, which
// matches what the whisper.cpp transcriber expects.
func WithTargetRate(rate int) Option {
	return func(p *Provider) { p.targetRate = rate }
}

// New creates a WAV preprocessing provider.
func New(opts ...Option) *Provider {
	p := &Provider{targetRate: defaultTargetRate}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe parses the WAV header and returns the recording duration without
// decoding the sample data. Malformed or zero-length recordings fail.
func (p *Provider) Probe(raw []byte) (time.Duration, error) {
	hdr, err := parseHeader(raw)
	if err != nil {
		return 0, err
	}
	frames := hdr.dataLen / (2 * hdr.channels)
	if frames == 0 {
		return 0, fmt.Errorf("wav: recording contains no audio frames")
	}
	return time.Duration(float64(frames) / float64(hdr.sampleRate) * float64(time.Second)), nil
}

// Process decodes the full recording into normalized mono samples at the
// target rate.
func (p *Provider) Process(ctx context.Context, raw []byte) (preprocess.Audio, error) {
	if err := ctx.Err(); err != nil {
		return preprocess.Audio{}, fmt.Errorf("wav: context already cancelled: %w", err)
	}
	hdr, err := parseHeader(raw)
	if err != nil {
		return preprocess.Audio{}, err
	}

	data := raw[hdr.dataOffset : hdr.dataOffset+hdr.dataLen]
	samples := decodeMono(data, hdr.channels)
	if len(samples) == 0 {
		return preprocess.Audio{}, fmt.Errorf("wav: recording contains no audio frames")
	}
	if hdr.sampleRate != p.targetRate {
		samples = resample(samples, hdr.sampleRate, p.targetRate)
	}
	normalize(samples)

	return preprocess.Audio{Samples: samples, SampleRate: p.targetRate}, nil
}

type header struct {
	sampleRate int
	channels   int
	dataOffset int
	dataLen    int
}

// parseHeader walks the RIFF chunk list and extracts the fmt and data chunks.
// Only uncompressed 16-bit PCM is accepted.
func parseHeader(raw []byte) (header, error) {
	if len(raw) < 44 {
		return header{}, fmt.Errorf("wav: file too short (%d bytes)", len(raw))
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return header{}, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var (
		hdr    header
		gotFmt bool
	)
	off := 12
	for off+8 <= len(raw) {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(raw) {
			return header{}, fmt.Errorf("wav: chunk %q exceeds file size", id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return header{}, fmt.Errorf("wav: fmt chunk too short (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(raw[body : body+2])
			if format != 1 {
				return header{}, fmt.Errorf("wav: unsupported audio format %d, want PCM", format)
			}
			hdr.channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			hdr.sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(raw[body+14 : body+16])
			if bits != 16 {
				return header{}, fmt.Errorf("wav: unsupported bit depth %d, want 16", bits)
			}
			if hdr.channels < 1 || hdr.channels > 2 {
				return header{}, fmt.Errorf("wav: unsupported channel count %d", hdr.channels)
			}
			if hdr.sampleRate <= 0 {
				return header{}, fmt.Errorf("wav: invalid sample rate %d", hdr.sampleRate)
			}
			gotFmt = true
		case "data":
			hdr.dataOffset = body
			hdr.dataLen = size
		}
		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if !gotFmt {
		return header{}, fmt.Errorf("wav: missing fmt chunk")
	}
	if hdr.dataLen == 0 {
		return header{}, fmt.Errorf("wav: missing or empty data chunk")
	}
	return hdr, nil
}

// decodeMono converts little-endian int16 PCM into float32 samples in
// [-1, 1], averaging channel pairs when the input is stereo.
func decodeMono(data []byte, channels int) []float32 {
	frameBytes := 2 * channels
	frames := len(data) / frameBytes
	out := make([]float32, frames)
	for i := range frames {
		var sum int32
		for c := range channels {
			o := i*frameBytes + c*2
			sum += int32(int16(data[o]) | int16(data[o+1])<<8)
		}
		out[i] = float32(sum/int32(channels)) / 32768.0
	}
	return out
}

// resample converts samples from srcRate to dstRate using linear
// interpolation.
func resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	dstLen := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if dstLen == 0 {
		return nil
	}
	out := make([]float32, dstLen)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstLen {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		s0 := samples[srcIdx]
		s1 := s0
		if srcIdx+1 < len(samples) {
			s1 = samples[srcIdx+1]
		}
		out[i] = s0*(1-frac) + s1*frac
	}
	return out
}

// normalize scales samples in place so the peak sits at normalizationPeak.
// Silent input is left untouched.
func normalize(samples []float32) {
	var peak float32
	for _, s := range samples {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}
	if peak == 0 {
		return
	}
	gain := normalizationPeak / peak
	for i := range samples {
		samples[i] *= gain
	}
}
