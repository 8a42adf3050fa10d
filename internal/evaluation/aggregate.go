package evaluation

import (
	"math"
	"sort"
	"strings"
)

// Aggregate computes the weighted overall score for a set of metric results.
// Degraded results are excluded and their weight is redistributed across the
// computed metrics in proportion to the remaining weights, so a speech with
// one broken metric is not silently dragged down. The result is an integer
// in [0, 100].
func Aggregate(results map[MetricID]MetricResult, weights map[MetricID]float64) int {
	var weighted, weightSum float64
	for _, id := range MetricOrder {
		r, ok := results[id]
		if !ok || r.Degraded {
			continue
		}
		w := weights[id]
		weighted += float64(r.Score) * w
		weightSum += w
	}
	if weightSum <= 0 {
		return 0
	}
	return ClampScore(math.Round(weighted / weightSum))
}

// Suggestions collects improvement suggestions from all metric feedback,
// prioritised by the lowest scoring metrics, deduplicated, capped at max.
// Placeholder feedback from degraded metrics is skipped.
func Suggestions(results map[MetricID]MetricResult, max int) []string {
	if max <= 0 {
		return nil
	}

	type entry struct {
		score int
		text  string
	}
	var entries []entry
	for _, id := range MetricOrder {
		r, ok := results[id]
		if !ok {
			continue
		}
		for _, fb := range r.Feedback {
			if strings.Contains(strings.ToLower(fb), "not available") {
				continue
			}
			entries = append(entries, entry{score: r.Score, text: fb})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score < entries[j].score })

	seen := make(map[string]struct{}, len(entries))
	suggestions := make([]string, 0, max)
	for _, e := range entries {
		if _, dup := seen[e.text]; dup {
			continue
		}
		seen[e.text] = struct{}{}
		suggestions = append(suggestions, e.text)
		if len(suggestions) >= max {
			break
		}
	}
	return suggestions
}
