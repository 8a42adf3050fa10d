package presentation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
)

// UI color palette keyed by metric concept.
var metricColors = map[string]string{
	"confidence": "#4CAF50",
	"clarity":    "#2196F3",
	"expression": "#FF9800",
	"pace":       "#9C27B0",
	"stamina":    "#E91E63",
	"structure":  "#00BCD4",
}

// iconLevel is one step of a leveled icon scale.
type iconLevel struct {
	icon  string
	label string
}

var voiceStrengthIcons = []iconLevel{
	{"🔇", "Very Quiet"},
	{"🔈", "Quiet"},
	{"🔉", "Good"},
	{"🔊", "Great"},
	{"📢", "Strong"},
	{"🔊✨", "Perfect!"},
}

var expressionIcons = []iconLevel{
	{"😐", "Flat"},
	{"🙂", "Okay"},
	{"😊", "Good"},
	{"😃", "Great"},
	{"🤩", "Amazing"},
	{"⭐", "Superstar!"},
}

const maxIconLevel = 5

// Builder assembles age-appropriate presentations from evaluation results.
// The zero value is not usable; construct with New.
type Builder struct {
	pick func(n int) int
}

// Option configures a Builder.
type Option func(*Builder)

// WithPick replaces the random template selection, fixing message choice in
// tests.
func WithPick(pick func(n int) int) Option {
	return func(b *Builder) { b.pick = pick }
}

// New creates a presentation builder.
func New(opts ...Option) *Builder {
	b := &Builder{pick: rand.IntN}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build dispatches on the result's age group. An unknown group is a
// programming error upstream and is reported, never silently defaulted.
func (b *Builder) Build(res *evaluation.Result) (Presentation, error) {
	in := awardInput{
		scores:   res.Scores,
		duration: time.Duration(res.Metadata.DurationSeconds * float64(time.Second)),
	}
	switch res.Metadata.AgeGroup {
	case evaluation.GroupPrePrimary:
		return b.buildPrePrimary(res, in), nil
	case evaluation.GroupLowerPrimary:
		return b.buildLowerPrimary(res, in), nil
	case evaluation.GroupUpperPrimary:
		return b.buildUpperPrimary(res, in), nil
	case evaluation.GroupMiddle, evaluation.GroupSecondary:
		return b.buildDetailed(res, in), nil
	}
	return nil, fmt.Errorf("presentation: unknown age group %q", res.Metadata.AgeGroup)
}

func (b *Builder) buildPrePrimary(res *evaluation.Result, in awardInput) PrePrimary {
	loudness := res.Scores.Loudness

	strength := VoiceJustRight
	switch {
	case loudness >= 70:
		strength = VoiceLion
	case loudness < 40:
		strength = VoiceMouse
	}

	state := "celebrating"
	category := msgJustRight
	switch strength {
	case VoiceLion:
		state = "roaring"
	case VoiceMouse:
		state = "encouraging"
		category = msgTooSoft
	}

	badge := firstBadge(evaluation.GroupPrePrimary, in)

	theme := "clouds"
	sound := soundEffect(strength)
	if badge != nil {
		theme = "stars"
		sound = "celebration_fanfare"
	}

	return PrePrimary{
		AgeGroup:        evaluation.GroupPrePrimary,
		VoiceDetected:   loudness > 20,
		VoiceStrength:   strength,
		Character:       "lion",
		CharacterState:  state,
		BackgroundTheme: theme,
		Message:         b.message(category, res.Metadata.StudentName, res.Metadata.Topic),
		SoundEffect:     sound,
		Badge:           badge,
	}
}

func soundEffect(strength VoiceStrength) string {
	switch strength {
	case VoiceLion:
		return "lion_roar"
	case VoiceMouse:
		return "encouragement_chime"
	}
	return "celebration_chime"
}

func (b *Builder) buildLowerPrimary(res *evaluation.Result, in awardInput) LowerPrimary {
	voiceLevel := scoreToLevel(res.Scores.Loudness)
	expressionLevel := scoreToLevel(res.Scores.PitchVariation)
	paceIcon := paceIconFor(res)

	metrics := []IconMetric{
		{
			ID:       "voice_strength",
			Icon:     voiceStrengthIcons[voiceLevel].icon,
			Label:    voiceStrengthIcons[voiceLevel].label,
			Level:    voiceLevel,
			MaxLevel: maxIconLevel,
			Color:    metricColors["confidence"],
		},
		{
			ID:    "pace",
			Icon:  paceIcon.icon,
			Label: paceIcon.label,
			Color: metricColors["pace"],
		},
		{
			ID:       "expression",
			Icon:     expressionIcons[expressionLevel].icon,
			Label:    expressionIcons[expressionLevel].label,
			Level:    expressionLevel,
			MaxLevel: maxIconLevel,
			Color:    metricColors["expression"],
		},
	}

	badge := firstBadge(evaluation.GroupLowerPrimary, in)

	return LowerPrimary{
		AgeGroup: evaluation.GroupLowerPrimary,
		Metrics:  metrics,
		Badge:    badge,
		Message:  lowerPrimaryMessage(res.Scores, badge),
	}
}

// paceIconFor maps speaking speed against the group's ideal range. Well
// outside the range shows the turtle or the bunny.
func paceIconFor(res *evaluation.Result) iconLevel {
	profile, ok := evaluation.ProfileFor(res.Metadata.AgeGroup)
	if !ok {
		return iconLevel{"👍", "Perfect!"}
	}
	wpm := 0.0
	if res.Metadata.DurationSeconds > 0 {
		wpm = float64(res.Metadata.WordCount) / (res.Metadata.DurationSeconds / 60)
	}
	switch {
	case wpm < float64(profile.MinWPM)*0.8:
		return iconLevel{"🐢", "Turtle Pace"}
	case wpm > float64(profile.MaxWPM)*1.2:
		return iconLevel{"🐇", "Bunny Fast"}
	}
	return iconLevel{"👍", "Perfect!"}
}

func lowerPrimaryMessage(scores evaluation.Scores, badge *Badge) string {
	if badge != nil {
		return fmt.Sprintf("Great job! You unlocked the %s! %s", badge.Name, badge.Emoji)
	}
	avg := (scores.Loudness + scores.Pace + scores.PitchVariation + scores.Clarity) / 4
	switch {
	case avg >= 70:
		return "Wonderful speaking! Keep it up!"
	case avg >= 50:
		return "Good effort! You're getting better!"
	}
	return "Nice try! Keep practicing!"
}

// scoreToLevel buckets a 0-100 score into a 0-5 icon level.
func scoreToLevel(score int) int {
	switch {
	case score >= 90:
		return 5
	case score >= 75:
		return 4
	case score >= 60:
		return 3
	case score >= 40:
		return 2
	case score >= 20:
		return 1
	}
	return 0
}

func (b *Builder) buildUpperPrimary(res *evaluation.Result, in awardInput) UpperPrimary {
	bars := []ProgressBar{
		{ID: "confidence", Label: "Confidence", Value: fraction(res.Scores.Loudness), Color: metricColors["confidence"]},
		{ID: "clarity", Label: "Clarity", Value: fraction(res.Scores.Clarity), Color: metricColors["clarity"]},
		{ID: "expression", Label: "Expression", Value: fraction(res.Scores.PitchVariation), Color: metricColors["expression"]},
		{ID: "pace", Label: "Pace", Value: fraction(res.Scores.Pace), Color: metricColors["pace"]},
	}

	return UpperPrimary{
		AgeGroup:     evaluation.GroupUpperPrimary,
		ProgressBars: bars,
		Tip:          improvementTip(res.Scores),
		Badges:       awardBadges(evaluation.GroupUpperPrimary, in),
	}
}

func fraction(score int) float64 {
	return float64(score) / 100
}

// tipCandidates are the metrics the single improvement tip can target, with
// the advice text shown for each.
var tipCandidates = []struct {
	id  evaluation.MetricID
	tip Tip
}{
	{evaluation.MetricLoudness, Tip{Text: "Try speaking a bit louder next time!", TargetMetric: "confidence"}},
	{evaluation.MetricClarity, Tip{Text: "Focus on pronouncing each word clearly.", TargetMetric: "clarity"}},
	{evaluation.MetricPitchVariation, Tip{Text: "Add more expression - make your voice go up and down!", TargetMetric: "expression"}},
	{evaluation.MetricPace, Tip{Text: "Watch your speaking speed - not too fast, not too slow.", TargetMetric: "pace"}},
	{evaluation.MetricFillerReduction, Tip{Text: "Try using fewer filler words like 'um' - pause silently instead!", TargetMetric: "confidence"}},
	{evaluation.MetricStamina, Tip{Text: "Keep your energy up until the very end!", TargetMetric: "confidence"}},
	{evaluation.MetricStructure, Tip{Text: "Start with a greeting and end with 'thank you'!", TargetMetric: "clarity"}},
}

// improvementTip picks the lowest-scoring candidate metric. When everything
// is already at 80 or better the tip turns into encouragement.
func improvementTip(scores evaluation.Scores) Tip {
	lowest := tipCandidates[0]
	for _, c := range tipCandidates[1:] {
		if scores.ByID(c.id) < scores.ByID(lowest.id) {
			lowest = c
		}
	}
	if scores.ByID(lowest.id) >= 80 {
		return Tip{Text: "Amazing work! You're doing great - keep it up!", TargetMetric: "confidence"}
	}
	return lowest.tip
}

func (b *Builder) buildDetailed(res *evaluation.Result, in awardInput) Detailed {
	suggestions := res.Suggestions
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return Detailed{
		AgeGroup:    res.Metadata.AgeGroup,
		Result:      res,
		Badges:      awardBadges(res.Metadata.AgeGroup, in),
		Suggestions: suggestions,
	}
}
