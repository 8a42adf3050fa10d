package metric

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/antzucaro/matchr"
)

// Compile-time assertion that Fillers satisfies Evaluator.
var _ Evaluator = (*Fillers)(nil)

// Hesitation sounds whose spelling varies with ASR output ("ummm", "uhm").
// Candidates starting with 'u' within edit distance 1 of these count as
// fillers too.
var fuzzyFillers = []string{"umm", "uhh"}

// Fillers scores filler word usage. Single words and two-word phrases are
// matched against the filler list; hesitation sounds are additionally
// fuzzy-matched so spelling variants the recognizer produces still count.
// The tolerated ratio is age-adjusted.
type Fillers struct {
	exact map[string]struct{}
	pairs map[string]struct{}
}

// FillersDetail is attached to the filler reduction result.
type FillersDetail struct {
	FillerCount   int           `json:"filler_count"`
	FillerRatio   float64       `json:"filler_ratio"`
	CommonFillers []FillerCount `json:"common_fillers,omitempty"`
}

// FillerCount is one filler word and how often it occurred.
type FillerCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// NewFillers creates the filler reduction evaluator.
func NewFillers(cfg Config) *Fillers {
	f := &Fillers{
		exact: make(map[string]struct{}),
		pairs: make(map[string]struct{}),
	}
	for _, w := range cfg.FillerWords {
		if strings.Contains(w, " ") {
			f.pairs[w] = struct{}{}
		} else {
			f.exact[w] = struct{}{}
		}
	}
	return f
}

func (f *Fillers) ID() evaluation.MetricID { return evaluation.MetricFillerReduction }

func (f *Fillers) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	words := in.Transcript.Words
	if len(words) == 0 {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricFillerReduction,
			Score:    0,
			Feedback: []string{"No speech detected"},
			Detail:   FillersDetail{},
		}, nil
	}

	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = normalizeWord(w.Text)
	}

	counts := make(map[string]int)
	fillerCount := 0
	for i := 0; i < len(normalized); i++ {
		if i+1 < len(normalized) {
			pair := normalized[i] + " " + normalized[i+1]
			if _, ok := f.pairs[pair]; ok {
				counts[pair]++
				fillerCount++
				i++ // both words consumed
				continue
			}
		}
		if f.isFiller(normalized[i]) {
			counts[normalized[i]]++
			fillerCount++
		}
	}

	ratio := float64(fillerCount) / float64(len(words))
	tolerance := in.Profile.FillerTolerance

	score := 100.0
	if ratio > tolerance {
		score = 100 - (ratio-tolerance)*300
	}
	final := evaluation.ClampScore(score)

	return evaluation.MetricResult{
		Metric:   evaluation.MetricFillerReduction,
		Score:    final,
		Feedback: f.feedback(fillerCount, ratio, tolerance, in.Profile.Group),
		Detail: FillersDetail{
			FillerCount:   fillerCount,
			FillerRatio:   round3(ratio),
			CommonFillers: topFillers(counts, 5),
		},
	}, nil
}

func (f *Fillers) isFiller(word string) bool {
	if _, ok := f.exact[word]; ok {
		return true
	}
	// Fuzzy matching only applies to words that could be a hesitation
	// sound. Without the leading-'u' gate, real words one edit away
	// ("mum" transposes to "umm") would count as fillers.
	if len(word) < 2 || word[0] != 'u' {
		return false
	}
	for _, target := range fuzzyFillers {
		if matchr.OSA(word, target) <= 1 {
			return true
		}
	}
	return false
}

func (f *Fillers) feedback(count int, ratio, tolerance float64, group evaluation.Group) []string {
	switch {
	case ratio > tolerance*2:
		if group.Young() {
			return []string{fmt.Sprintf("You said 'um' and 'uh' a lot (%d times). Try taking a breath instead!", count)}
		}
		return []string{fmt.Sprintf("You used many filler words like 'um', 'uh', 'like' (%d times). Try pausing silently instead", count)}
	case ratio > tolerance:
		if group.Young() {
			return []string{fmt.Sprintf("You used some filler words (%d times). Keep practicing!", count)}
		}
		return []string{fmt.Sprintf("You used some filler words (%d times). Practice reducing them", count)}
	default:
		return []string{"Great! Very few filler words used"}
	}
}

func topFillers(counts map[string]int, n int) []FillerCount {
	out := make([]FillerCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, FillerCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
