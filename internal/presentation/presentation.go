// Package presentation turns a raw evaluation result into the age-appropriate
// payload shown to the child. There are exactly four variants forming a closed
// union: the sealed Presentation interface can only be satisfied by types in
// this package, so variant dispatch is checked at compile time.
package presentation

import (
	"github.com/MrWong99/orato/internal/evaluation"
)

// Variant identifies one of the four presentation shapes.
type Variant string

const (
	VariantPrePrimary   Variant = "pre_primary"
	VariantLowerPrimary Variant = "lower_primary"
	VariantUpperPrimary Variant = "upper_primary"
	VariantDetailed     Variant = "detailed"
)

// Presentation is the child-facing view of an evaluation. It is a sealed
// union over PrePrimary, LowerPrimary, UpperPrimary and Detailed.
type Presentation interface {
	Variant() Variant

	sealed()
}

// Badge is an achievement earned by an evaluation. Criterion is the
// human-readable rule it satisfied.
type Badge struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	Animation string `json:"animation"`
	Criterion string `json:"criterion"`
}

// VoiceStrength is the single dominant voice character shown to ages 3-5.
type VoiceStrength string

const (
	VoiceLion      VoiceStrength = "lion"
	VoiceMouse     VoiceStrength = "mouse"
	VoiceJustRight VoiceStrength = "just_right"
)

// PrePrimary is the ages 3-5 output: one character, one message, at most one
// badge. It deliberately carries no numeric scores.
type PrePrimary struct {
	AgeGroup        evaluation.Group `json:"age_group"`
	VoiceDetected   bool             `json:"voice_detected"`
	VoiceStrength   VoiceStrength    `json:"voice_strength"`
	Character       string           `json:"character"`
	CharacterState  string           `json:"character_state"`
	BackgroundTheme string           `json:"background_theme"`
	Message         string           `json:"message"`
	SoundEffect     string           `json:"sound_effect"`
	Badge           *Badge           `json:"badge,omitempty"`
}

func (PrePrimary) Variant() Variant { return VariantPrePrimary }
func (PrePrimary) sealed()          {}

// IconMetric is one visual metric for ages 6-8. Level is 0 to MaxLevel for
// leveled metrics; the pace metric is icon-only and has MaxLevel 0.
type IconMetric struct {
	ID       string `json:"id"`
	Icon     string `json:"icon"`
	Label    string `json:"label"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"max_level,omitempty"`
	Color    string `json:"color"`
}

// LowerPrimary is the ages 6-8 output: three icon metrics, at most one badge,
// one celebration message. No raw numbers.
type LowerPrimary struct {
	AgeGroup evaluation.Group `json:"age_group"`
	Metrics  []IconMetric     `json:"metrics"`
	Badge    *Badge           `json:"badge,omitempty"`
	Message  string           `json:"message"`
}

func (LowerPrimary) Variant() Variant { return VariantLowerPrimary }
func (LowerPrimary) sealed()          {}

// ProgressBar shows one metric to ages 9-10 as a 0-1 fraction.
type ProgressBar struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Tip is the single improvement suggestion shown to ages 9-10.
type Tip struct {
	Text         string `json:"text"`
	TargetMetric string `json:"target_metric"`
}

// Streak is optional session-streak info populated from user history.
type Streak struct {
	Sessions int `json:"sessions"`
}

// UpperPrimary is the ages 9-10 output: four progress bars, exactly one
// prioritized improvement tip and every badge earned.
type UpperPrimary struct {
	AgeGroup     evaluation.Group `json:"age_group"`
	ProgressBars []ProgressBar    `json:"progress_bars"`
	Tip          Tip              `json:"improvement_tip"`
	Badges       []Badge          `json:"badges_earned"`
	Streak       *Streak          `json:"streak,omitempty"`
}

func (UpperPrimary) Variant() Variant { return VariantUpperPrimary }
func (UpperPrimary) sealed()          {}

// Detailed is the ages 11+ output: the full evaluation result plus earned
// badges.
type Detailed struct {
	AgeGroup    evaluation.Group   `json:"age_group"`
	Result      *evaluation.Result `json:"result"`
	Badges      []Badge            `json:"badges_earned"`
	Suggestions []string           `json:"improvement_suggestions"`
}

func (Detailed) Variant() Variant { return VariantDetailed }
func (Detailed) sealed()          {}
