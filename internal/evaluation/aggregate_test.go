package evaluation

import (
	"testing"
)

func perfectResults() map[MetricID]MetricResult {
	results := make(map[MetricID]MetricResult, len(MetricOrder))
	for _, id := range MetricOrder {
		results[id] = MetricResult{Metric: id, Score: 100}
	}
	return results
}

func TestAggregatePerfectScoresGiveHundred(t *testing.T) {
	t.Parallel()

	for _, p := range Profiles() {
		if got := Aggregate(perfectResults(), p.Weights); got != 100 {
			t.Errorf("profile %s: Aggregate(all 100) = %d, want 100", p.Group, got)
		}
	}
}

func TestAggregateStaysInRange(t *testing.T) {
	t.Parallel()

	p, _ := ProfileFor(GroupMiddle)
	results := perfectResults()
	for _, id := range MetricOrder {
		results[id] = MetricResult{Metric: id, Score: 0}
	}
	if got := Aggregate(results, p.Weights); got != 0 {
		t.Errorf("Aggregate(all 0) = %d, want 0", got)
	}
}

func TestAggregateRedistributesDegradedWeight(t *testing.T) {
	t.Parallel()

	p, _ := ProfileFor(GroupSecondary)
	results := perfectResults()

	// Degrading a metric must not change the overall when every computed
	// metric has the same score.
	r := results[MetricStamina]
	r.Degraded = true
	r.Score = 0
	results[MetricStamina] = r
	if got := Aggregate(results, p.Weights); got != 100 {
		t.Fatalf("Aggregate with degraded stamina = %d, want 100", got)
	}

	// With mixed scores the degraded metric's weight goes to the rest
	// proportionally: result equals the weighted mean over computed metrics.
	for _, id := range MetricOrder {
		res := results[id]
		res.Score = 50
		results[id] = res
	}
	r = results[MetricStamina]
	r.Score = 0
	r.Degraded = true
	results[MetricStamina] = r
	if got := Aggregate(results, p.Weights); got != 50 {
		t.Errorf("Aggregate with degraded stamina over uniform 50s = %d, want 50", got)
	}
}

func TestAggregateAllDegraded(t *testing.T) {
	t.Parallel()

	p, _ := ProfileFor(GroupMiddle)
	results := perfectResults()
	for _, id := range MetricOrder {
		r := results[id]
		r.Degraded = true
		results[id] = r
	}
	if got := Aggregate(results, p.Weights); got != 0 {
		t.Errorf("Aggregate(all degraded) = %d, want 0", got)
	}
}

func TestSuggestionsOrderedByLowestScore(t *testing.T) {
	t.Parallel()

	results := map[MetricID]MetricResult{
		MetricClarity: {Metric: MetricClarity, Score: 90, Feedback: []string{"Great clarity!"}},
		MetricPace:    {Metric: MetricPace, Score: 30, Feedback: []string{"Slow down a little"}},
		MetricStamina: {Metric: MetricStamina, Score: 60, Feedback: []string{"Keep your energy up"}},
	}
	got := Suggestions(results, 5)
	want := []string{"Slow down a little", "Keep your energy up", "Great clarity!"}
	if len(got) != len(want) {
		t.Fatalf("Suggestions returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestionsSkipsUnavailableAndDuplicates(t *testing.T) {
	t.Parallel()

	results := map[MetricID]MetricResult{
		MetricLoudness: {Metric: MetricLoudness, Score: 70, Feedback: []string{"Audio features not available"}, Degraded: true},
		MetricClarity:  {Metric: MetricClarity, Score: 40, Feedback: []string{"Speak up"}},
		MetricPace:     {Metric: MetricPace, Score: 50, Feedback: []string{"Speak up"}},
	}
	got := Suggestions(results, 5)
	if len(got) != 1 || got[0] != "Speak up" {
		t.Fatalf("Suggestions = %v, want exactly [Speak up]", got)
	}
}

func TestSuggestionsCapped(t *testing.T) {
	t.Parallel()

	results := make(map[MetricID]MetricResult)
	for i, id := range MetricOrder {
		results[id] = MetricResult{Metric: id, Score: i * 10, Feedback: []string{"tip for " + string(id)}}
	}
	if got := Suggestions(results, 3); len(got) != 3 {
		t.Fatalf("Suggestions capped at 3 returned %d entries", len(got))
	}
	if got := Suggestions(results, 0); got != nil {
		t.Fatalf("Suggestions with max 0 = %v, want nil", got)
	}
}

func TestNewScoresRoundTrip(t *testing.T) {
	t.Parallel()

	results := make(map[MetricID]MetricResult)
	for i, id := range MetricOrder {
		results[id] = MetricResult{Metric: id, Score: 10 + i}
	}
	s := NewScores(77, results)
	if s.Overall != 77 {
		t.Fatalf("Overall = %d, want 77", s.Overall)
	}
	for i, id := range MetricOrder {
		if got := s.ByID(id); got != 10+i {
			t.Errorf("ByID(%s) = %d, want %d", id, got, 10+i)
		}
	}
}
