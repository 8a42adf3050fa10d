package metric

import (
	"strings"

	"github.com/MrWong99/orato/internal/evaluation"
)

// Compile-time assertion that Structure satisfies Evaluator.
var _ Evaluator = (*Structure)(nil)

// Structure scores the presence of an introduction, body and conclusion by
// looking for marker phrases near the beginning and end of the transcript.
// Younger age groups get a generosity bonus since formal structure is not
// expected of them.
type Structure struct {
	introMarkers      []string
	conclusionMarkers []string
}

// StructureDetail is attached to the structure result.
type StructureDetail struct {
	HasIntro      bool `json:"has_intro"`
	HasBody       bool `json:"has_body"`
	HasConclusion bool `json:"has_conclusion"`
}

// NewStructure creates the structure evaluator.
func NewStructure(cfg Config) *Structure {
	return &Structure{introMarkers: cfg.IntroMarkers, conclusionMarkers: cfg.ConclusionMarkers}
}

func (s *Structure) ID() evaluation.MetricID { return evaluation.MetricStructure }

// Markers are searched within this many characters of the transcript edges.
const markerWindow = 200

func (s *Structure) Evaluate(in Inputs) (evaluation.MetricResult, error) {
	text := strings.ToLower(in.Transcript.Text)
	if text == "" {
		return evaluation.MetricResult{
			Metric:   evaluation.MetricStructure,
			Score:    0,
			Feedback: []string{"No speech detected"},
			Detail:   StructureDetail{},
		}, nil
	}

	head := text
	if len(head) > markerWindow {
		head = head[:markerWindow]
	}
	tail := text
	if len(tail) > markerWindow {
		tail = tail[len(tail)-markerWindow:]
	}

	hasIntro := containsAny(head, s.introMarkers)
	hasConclusion := containsAny(tail, s.conclusionMarkers)
	hasBody := len(in.Transcript.Segments) >= 3 || len(text) > 100

	score := 0
	if hasIntro {
		score += 35
	}
	if hasBody {
		score += 30
	}
	if hasConclusion {
		score += 35
	}
	switch in.Profile.Group {
	case evaluation.GroupPrePrimary, evaluation.GroupLowerPrimary:
		score += 30
	case evaluation.GroupUpperPrimary:
		score += 15
	}
	final := evaluation.ClampScore(float64(score))

	return evaluation.MetricResult{
		Metric:   evaluation.MetricStructure,
		Score:    final,
		Feedback: s.feedback(hasIntro, hasConclusion, in.Profile.Group),
		Detail: StructureDetail{
			HasIntro:      hasIntro,
			HasBody:       hasBody,
			HasConclusion: hasConclusion,
		},
	}, nil
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func (s *Structure) feedback(hasIntro, hasConclusion bool, group evaluation.Group) []string {
	var missing []string
	if !hasIntro {
		missing = append(missing, "introduction")
	}
	if !hasConclusion {
		missing = append(missing, "conclusion")
	}

	switch {
	case len(missing) > 0 && (group == evaluation.GroupMiddle || group == evaluation.GroupSecondary):
		return []string{"Try adding a clear " + strings.Join(missing, " and ") + " to your speech"}
	case len(missing) > 0:
		if group.Young() {
			return []string{"Great job! Next time, try starting with 'Hello' or ending with 'Thank you'!"}
		}
		return []string{"Great effort! Next time, try starting with a greeting or ending with 'thank you'"}
	default:
		if group.Young() {
			return []string{"Excellent! You started and ended your speech perfectly!"}
		}
		return []string{"Excellent structure! Clear beginning, middle, and end"}
	}
}
