package metric

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/pkg/provider/transcribe"
)

func profileFor(t *testing.T, age int) evaluation.Profile {
	t.Helper()
	p, err := evaluation.Classify(age)
	if err != nil {
		t.Fatalf("Classify(%d) failed: %v", age, err)
	}
	return p
}

// transcriptOf spaces the given words evenly across dur with the given
// recognition confidence.
func transcriptOf(words []string, dur time.Duration, confidence float64) *transcribe.Transcript {
	tr := &transcribe.Transcript{Text: strings.Join(words, " "), Language: "en"}
	if len(words) == 0 {
		return tr
	}
	slot := dur / time.Duration(len(words))
	for i, w := range words {
		start := time.Duration(i) * slot
		tr.Words = append(tr.Words, transcribe.Word{
			Text:       w,
			Start:      start,
			End:        start + slot*8/10,
			Confidence: confidence,
		})
	}
	tr.Segments = []transcribe.Segment{{Text: tr.Text, End: dur}}
	return tr
}

func repeatWords(word string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = word
	}
	return out
}

func distinctWords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("word%d", i)
	}
	return out
}

func TestClarityScoresAverageConfidence(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Transcript: transcriptOf(distinctWords(10), 10*time.Second, 0.8),
		Duration:   10 * time.Second,
		Profile:    profileFor(t, 12),
	}
	res, err := NewClarity(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 80 {
		t.Errorf("clarity score = %d, want 80", res.Score)
	}
	detail := res.Detail.(ClarityDetail)
	if detail.LowConfidenceCount != 0 {
		t.Errorf("low confidence count = %d, want 0", detail.LowConfidenceCount)
	}
}

func TestEmptyTranscriptScoresZero(t *testing.T) {
	t.Parallel()

	// A silent recording is a valid WAV that yields zero recognized words.
	// Every transcript metric must bottom out instead of handing silence a
	// perfect score.
	cfg := Default()
	evals := []Evaluator{
		NewClarity(cfg),
		NewPace(),
		NewFillers(cfg),
		NewRepetition(cfg),
		NewStructure(cfg),
	}
	in := Inputs{
		Transcript: &transcribe.Transcript{},
		Duration:   5 * time.Second,
		Profile:    profileFor(t, 12),
	}
	for _, ev := range evals {
		t.Run(string(ev.ID()), func(t *testing.T) {
			res, err := ev.Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if res.Score != 0 {
				t.Errorf("score for silence = %d, want 0", res.Score)
			}
			if len(res.Feedback) != 1 || res.Feedback[0] != "No speech detected" {
				t.Errorf("feedback = %v, want [No speech detected]", res.Feedback)
			}
		})
	}
}

func TestRepetitionShortTranscriptScoresHundred(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Transcript: transcriptOf(distinctWords(4), 4*time.Second, 0.9),
		Duration:   4 * time.Second,
		Profile:    profileFor(t, 12),
	}
	res, err := NewRepetition(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("score for four words = %d, want 100", res.Score)
	}
}

func TestPaceMidpointScoresHundred(t *testing.T) {
	t.Parallel()

	for _, age := range []int{4, 7, 9, 12, 15} {
		profile := profileFor(t, age)
		mid := (profile.MinWPM + profile.MaxWPM) / 2
		in := Inputs{
			Transcript: transcriptOf(distinctWords(mid), time.Minute, 0.9),
			Duration:   time.Minute,
			Profile:    profile,
		}
		res, err := NewPace().Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score != 100 {
			t.Errorf("age %d: pace score at midpoint %d wpm = %d, want 100", age, mid, res.Score)
		}
	}
}

func TestPaceDecreasesAwayFromRange(t *testing.T) {
	t.Parallel()

	profile := profileFor(t, 12) // 100-150 wpm
	eval := NewPace()

	slow := func(wpm int) int {
		in := Inputs{
			Transcript: transcriptOf(distinctWords(wpm), time.Minute, 0.9),
			Duration:   time.Minute,
			Profile:    profile,
		}
		res, err := eval.Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return res.Score
	}

	prev := 100
	for _, wpm := range []int{90, 70, 50, 30} {
		got := slow(wpm)
		if got >= prev {
			t.Errorf("pace score at %d wpm = %d, want strictly below %d", wpm, got, prev)
		}
		prev = got
	}

	prev = 100
	for _, wpm := range []int{170, 200, 250} {
		got := slow(wpm)
		if got >= prev {
			t.Errorf("pace score at %d wpm = %d, want strictly below %d", wpm, got, prev)
		}
		prev = got
	}
}

func TestFillersToleratedRatioScoresHundred(t *testing.T) {
	t.Parallel()

	// 1 filler in 20 words is a 5% ratio, inside every tolerance above 0.05.
	words := distinctWords(19)
	words = append(words, "um")
	in := Inputs{
		Transcript: transcriptOf(words, 30*time.Second, 0.9),
		Duration:   30 * time.Second,
		Profile:    profileFor(t, 7),
	}
	res, err := NewFillers(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("filler score = %d, want 100", res.Score)
	}
}

func TestFillersPenalizesAboveTolerance(t *testing.T) {
	t.Parallel()

	// Four "um" in 20 words for a 7 year old: ratio 0.20, tolerance 0.12,
	// score = 100 - 0.08*300 = 76.
	words := distinctWords(16)
	words = append(words, "um", "um", "um", "um")
	in := Inputs{
		Transcript: transcriptOf(words, 30*time.Second, 0.9),
		Duration:   30 * time.Second,
		Profile:    profileFor(t, 7),
	}
	res, err := NewFillers(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 76 {
		t.Errorf("filler score = %d, want 76", res.Score)
	}
	detail := res.Detail.(FillersDetail)
	if detail.FillerCount != 4 {
		t.Errorf("filler count = %d, want 4", detail.FillerCount)
	}
	if len(detail.CommonFillers) != 1 || detail.CommonFillers[0] != (FillerCount{Word: "um", Count: 4}) {
		t.Errorf("common fillers = %v, want [{um 4}]", detail.CommonFillers)
	}
}

func TestFillersMatchesVariantsAndPhrases(t *testing.T) {
	t.Parallel()

	words := append(distinctWords(10), "ummm", "you", "know")
	in := Inputs{
		Transcript: transcriptOf(words, 20*time.Second, 0.9),
		Duration:   20 * time.Second,
		Profile:    profileFor(t, 15),
	}
	res, err := NewFillers(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	detail := res.Detail.(FillersDetail)
	if detail.FillerCount != 2 {
		t.Errorf("filler count = %d, want 2 (ummm + you know)", detail.FillerCount)
	}
}

func TestFillersIgnoresNearMissRealWords(t *testing.T) {
	t.Parallel()

	// "mum" is one transposition from "umm" and "ohh" one substitution
	// from "uhh"; neither is a hesitation sound.
	words := append(distinctWords(10), "mum", "ohh", "mom")
	in := Inputs{
		Transcript: transcriptOf(words, 20*time.Second, 0.9),
		Duration:   20 * time.Second,
		Profile:    profileFor(t, 8),
	}
	res, err := NewFillers(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	detail := res.Detail.(FillersDetail)
	if detail.FillerCount != 0 {
		t.Errorf("filler count = %d, want 0 (%v)", detail.FillerCount, detail.CommonFillers)
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
}

func TestFillersScoreNonIncreasingWithMoreFillers(t *testing.T) {
	t.Parallel()

	profile := profileFor(t, 10)
	eval := NewFillers(Default())
	prev := 101
	for fillers := 0; fillers <= 10; fillers += 2 {
		words := append(distinctWords(20-fillers), repeatWords("um", fillers)...)
		in := Inputs{
			Transcript: transcriptOf(words, 30*time.Second, 0.9),
			Duration:   30 * time.Second,
			Profile:    profile,
		}
		res, err := eval.Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score > prev {
			t.Errorf("filler score increased from %d to %d at %d fillers", prev, res.Score, fillers)
		}
		prev = res.Score
	}
}

func TestPausesCleanDeliveryScoresHundred(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Transcript: transcriptOf(distinctWords(30), 20*time.Second, 0.9),
		Duration:   20 * time.Second,
		Profile:    profileFor(t, 12),
	}
	res, err := NewPauses(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("pause score = %d, want 100", res.Score)
	}
}

func TestPausesPenalizesExcessivePauses(t *testing.T) {
	t.Parallel()

	// Two words with a 5 second gap: one long pause and one excessive pause.
	tr := &transcribe.Transcript{
		Text: "hello world",
		Words: []transcribe.Word{
			{Text: "hello", Start: 0, End: time.Second, Confidence: 0.9},
			{Text: "world", Start: 6 * time.Second, End: 7 * time.Second, Confidence: 0.9},
		},
	}
	in := Inputs{Transcript: tr, Duration: 7 * time.Second, Profile: profileFor(t, 15)}
	res, err := NewPauses(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Long pause ratio 5/7 ~ 0.714 over tolerance 0.10 and one excessive
	// pause: far past zero either way.
	if res.Score != 0 {
		t.Errorf("pause score = %d, want 0", res.Score)
	}
	detail := res.Detail.(PausesDetail)
	if detail.ExcessivePauses != 1 {
		t.Errorf("excessive pauses = %d, want 1", detail.ExcessivePauses)
	}
}

func TestPausesScoreNonIncreasingWithMorePauseTime(t *testing.T) {
	t.Parallel()

	profile := profileFor(t, 10)
	eval := NewPauses(Default())
	prev := 101
	for _, gapSeconds := range []int{0, 3, 6, 9} {
		gap := time.Duration(gapSeconds) * time.Second
		tr := &transcribe.Transcript{Text: "a b c"}
		cursor := time.Duration(0)
		for _, w := range []string{"a", "b", "c"} {
			tr.Words = append(tr.Words, transcribe.Word{Text: w, Start: cursor, End: cursor + time.Second, Confidence: 0.9})
			cursor += time.Second + gap
		}
		in := Inputs{Transcript: tr, Duration: 30 * time.Second, Profile: profile}
		res, err := eval.Evaluate(in)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Score > prev {
			t.Errorf("pause score increased from %d to %d at gap %v", prev, res.Score, gap)
		}
		prev = res.Score
	}
}

func TestRepetitionCleanSpeechScoresHundred(t *testing.T) {
	t.Parallel()

	in := Inputs{
		Transcript: transcriptOf(distinctWords(20), 15*time.Second, 0.9),
		Duration:   15 * time.Second,
		Profile:    profileFor(t, 12),
	}
	res, err := NewRepetition(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("repetition score = %d, want 100", res.Score)
	}
}

func TestRepetitionPenalizesConsecutiveRepeats(t *testing.T) {
	t.Parallel()

	words := []string{"today", "today", "today", "was", "great", "fun", "and", "sunny"}
	in := Inputs{
		Transcript: transcriptOf(words, 10*time.Second, 0.9),
		Duration:   10 * time.Second,
		Profile:    profileFor(t, 15),
	}
	res, err := NewRepetition(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Two consecutive repeats at 5 points each.
	if res.Score != 90 {
		t.Errorf("repetition score = %d, want 90", res.Score)
	}

	// Same speech from a 7 year old takes half the penalty.
	in.Profile = profileFor(t, 7)
	res, err = NewRepetition(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 95 {
		t.Errorf("young repetition score = %d, want 95", res.Score)
	}
}

func TestStructureDetectsMarkers(t *testing.T) {
	t.Parallel()

	text := "hello everyone my topic is dinosaurs " +
		strings.Join(distinctWords(40), " ") +
		" and that is why I love them thank you"
	words := strings.Fields(text)
	tr := transcriptOf(words, time.Minute, 0.9)
	in := Inputs{Transcript: tr, Duration: time.Minute, Profile: profileFor(t, 15)}
	res, err := NewStructure(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Score != 100 {
		t.Errorf("structure score = %d, want 100", res.Score)
	}
	detail := res.Detail.(StructureDetail)
	if !detail.HasIntro || !detail.HasBody || !detail.HasConclusion {
		t.Errorf("structure detail = %+v, want all parts detected", detail)
	}
}

func TestStructureMissingConclusion(t *testing.T) {
	t.Parallel()

	text := "hello my name is sam " + strings.Join(distinctWords(40), " ")
	tr := transcriptOf(strings.Fields(text), time.Minute, 0.9)
	in := Inputs{Transcript: tr, Duration: time.Minute, Profile: profileFor(t, 12)}
	res, err := NewStructure(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Intro 35 + body 30, no conclusion, no age bonus for middle.
	if res.Score != 65 {
		t.Errorf("structure score = %d, want 65", res.Score)
	}
}

func TestStructureYoungBonus(t *testing.T) {
	t.Parallel()

	tr := transcriptOf(strings.Fields("hello i like cats"), 10*time.Second, 0.9)
	in := Inputs{Transcript: tr, Duration: 10 * time.Second, Profile: profileFor(t, 4)}
	res, err := NewStructure(Default()).Evaluate(in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// Intro 35 + pre-primary bonus 30; no body, no conclusion.
	if res.Score != 65 {
		t.Errorf("structure score = %d, want 65", res.Score)
	}
}
