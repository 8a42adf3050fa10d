package metric

import (
	"sort"
	"strings"

	"github.com/MrWong99/orato/internal/evaluation"
)

// Compile-time assertion that Repetition satisfies Evaluator.
var _ Evaluator = (*Repetition)(nil)

// Repetition scores word and phrase repetition. Back-to-back repeated words
// and three-word phrases that recur often usually indicate nervousness or
// lack of preparation. Younger speakers take half the penalty.
type Repetition struct {
	minWordLen    int
	phraseRepeats int
}

// RepetitionDetail is attached to the repetition control result.
type RepetitionDetail struct {
	ConsecutiveRepeats int              `json:"consecutive_repeats"`
	RepeatedPhrases    []RepeatedPhrase `json:"repeated_phrases,omitempty"`
}

// RepeatedPhrase is a phrase that recurred suspiciously often.
type RepeatedPhrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// NewRepetition creates the repetition control evaluator.
func NewRepetition(cfg Config) *Repetition {
	return &Repetition{minWordLen: cfg.MinRepeatWordLen, phraseRepeats: cfg.PhraseRepeats}
}

func (r *Repetition) ID() evaluation.MetricID { return evaluation.MetricRepetitionControl }

func (r *Repetition) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	words := in.Transcript.Words
	if len(words) == 0 {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricRepetitionControl,
			Score:    0,
			Feedback: []string{"No speech detected"},
			Detail:   RepetitionDetail{},
		}, nil
	}
	// Too little material to judge repetition.
	if len(words) < 5 {
		return evaluation.MetricResult{
			Metric: evaluation.MetricRepetitionControl,
			Score:  100,
			Detail: RepetitionDetail{},
		}, nil
	}

	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = normalizeWord(w.Text)
	}

	consecutive := 0
	for i := range len(normalized) - 1 {
		if normalized[i] == normalized[i+1] && len(normalized[i]) >= r.minWordLen {
			consecutive++
		}
	}

	phraseCounts := make(map[string]int)
	for i := 0; i+2 < len(normalized); i++ {
		phrase := strings.Join(normalized[i:i+3], " ")
		phraseCounts[phrase]++
	}
	var repeated []RepeatedPhrase
	for phrase, count := range phraseCounts {
		if count >= r.phraseRepeats {
			repeated = append(repeated, RepeatedPhrase{Phrase: phrase, Count: count})
		}
	}
	sort.Slice(repeated, func(i, j int) bool {
		if repeated[i].Count != repeated[j].Count {
			return repeated[i].Count > repeated[j].Count
		}
		return repeated[i].Phrase < repeated[j].Phrase
	})

	penalty := float64(consecutive*5 + len(repeated)*10)
	if in.Profile.Group.Young() {
		penalty *= 0.5
	}
	score := evaluation.ClampScore(100 - penalty)

	detail := RepetitionDetail{ConsecutiveRepeats: consecutive}
	if len(repeated) > 3 {
		repeated = repeated[:3]
	}
	detail.RepeatedPhrases = repeated

	return evaluation.MetricResult{
		Metric:   evaluation.MetricRepetitionControl,
		Score:    score,
		Feedback: r.feedback(consecutive, len(phraseRepeatsOver(phraseCounts, r.phraseRepeats)), in.Profile.Group),
		Detail:   detail,
	}, nil
}

func phraseRepeatsOver(counts map[string]int, threshold int) []string {
	var out []string
	for phrase, count := range counts {
		if count >= threshold {
			out = append(out, phrase)
		}
	}
	return out
}

func (r *Repetition) feedback(consecutive, phrases int, group evaluation.Group) []string {
	switch {
	case phrases > 2:
		if group.Young() {
			return []string{"You repeated some phrases. Try to keep going with new ideas!"}
		}
		return []string{"You repeated some phrases multiple times. Try to move forward with new ideas"}
	case consecutive > 3:
		if group.Young() {
			return []string{"You repeated some words. Take a breath and continue!"}
		}
		return []string{"You repeated some words back-to-back. Take a breath and continue"}
	case consecutive > 0:
		return []string{"Just a bit of repetition noticed - doing well overall"}
	default:
		return []string{"Excellent! No noticeable repetition"}
	}
}
