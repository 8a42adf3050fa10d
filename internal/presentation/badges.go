package presentation

import (
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
)

// awardInput is everything a badge criterion can look at.
type awardInput struct {
	scores   evaluation.Scores
	duration time.Duration
}

// badgeRule pairs a badge with its earning criterion. Rules are kept in
// priority order per age group; when several match, earlier rules rank first
// and single-badge variants take only the first.
type badgeRule struct {
	badge  Badge
	earned func(in awardInput) bool
}

func metricAtLeast(id evaluation.MetricID, threshold int) func(awardInput) bool {
	return func(in awardInput) bool { return in.scores.ByID(id) >= threshold }
}

func overallAtLeast(threshold int) func(awardInput) bool {
	return func(in awardInput) bool { return in.scores.Overall >= threshold }
}

var badgeRules = map[evaluation.Group][]badgeRule{
	evaluation.GroupPrePrimary: {
		{
			badge: Badge{
				ID: "strong_voice", Name: "Strong Voice Badge", Emoji: "🦁",
				Animation: "roar", Criterion: "loudness score of 70 or more",
			},
			earned: metricAtLeast(evaluation.MetricLoudness, 70),
		},
		{
			badge: Badge{
				ID: "brave_speaker", Name: "Brave Speaker Badge", Emoji: "⭐",
				Animation: "sparkle", Criterion: "voice present for at least 10 seconds",
			},
			earned: func(in awardInput) bool {
				return in.scores.Loudness > 30 && in.duration >= 10*time.Second
			},
		},
		{
			badge: Badge{
				ID: "happy_talker", Name: "Happy Talker Badge", Emoji: "🌟",
				Animation: "bounce", Criterion: "pitch variation score of 60 or more",
			},
			earned: metricAtLeast(evaluation.MetricPitchVariation, 60),
		},
	},
	evaluation.GroupLowerPrimary: {
		{
			badge: Badge{
				ID: "confident_speaker", Name: "Confident Speaker Badge", Emoji: "🏅",
				Animation: "bounce", Criterion: "loudness 70+ and pace 60+",
			},
			earned: func(in awardInput) bool {
				return in.scores.Loudness >= 70 && in.scores.Pace >= 60
			},
		},
		{
			badge: Badge{
				ID: "clear_voice", Name: "Clear Voice Badge", Emoji: "🔊",
				Animation: "pulse", Criterion: "clarity score of 70 or more",
			},
			earned: metricAtLeast(evaluation.MetricClarity, 70),
		},
		{
			badge: Badge{
				ID: "perfect_pace", Name: "Perfect Pace Badge", Emoji: "⏱️",
				Animation: "spin", Criterion: "pace score of 80 or more",
			},
			earned: metricAtLeast(evaluation.MetricPace, 80),
		},
		{
			badge: Badge{
				ID: "expressive_star", Name: "Expressive Star", Emoji: "🌈",
				Animation: "rainbow", Criterion: "pitch variation score of 75 or more",
			},
			earned: metricAtLeast(evaluation.MetricPitchVariation, 75),
		},
	},
	evaluation.GroupUpperPrimary: {
		{
			badge: Badge{
				ID: "all_rounder", Name: "All-Rounder Badge", Emoji: "🎯",
				Animation: "confetti", Criterion: "every metric score of 70 or more",
			},
			earned: func(in awardInput) bool {
				for _, id := range evaluation.MetricOrder {
					if in.scores.ByID(id) < 70 {
						return false
					}
				}
				return true
			},
		},
		{
			badge: Badge{
				ID: "expression_star", Name: "Expression Star", Emoji: "🌟",
				Animation: "sparkle", Criterion: "pitch variation score of 80 or more",
			},
			earned: metricAtLeast(evaluation.MetricPitchVariation, 80),
		},
		{
			badge: Badge{
				ID: "confidence_champion", Name: "Confidence Champion", Emoji: "💪",
				Animation: "flex", Criterion: "loudness score of 85 or more",
			},
			earned: metricAtLeast(evaluation.MetricLoudness, 85),
		},
		{
			badge: Badge{
				ID: "endurance_master", Name: "Endurance Master", Emoji: "🏃",
				Animation: "run", Criterion: "stamina score of 80 or more",
			},
			earned: metricAtLeast(evaluation.MetricStamina, 80),
		},
		{
			badge: Badge{
				ID: "smooth_speaker", Name: "Smooth Speaker", Emoji: "🎤",
				Animation: "mic_drop", Criterion: "filler reduction score of 90 or more",
			},
			earned: metricAtLeast(evaluation.MetricFillerReduction, 90),
		},
	},
	evaluation.GroupMiddle: {
		{
			badge: Badge{
				ID: "professional_speaker", Name: "Professional Speaker", Emoji: "🎓",
				Animation: "graduate", Criterion: "overall score of 80 or more",
			},
			earned: overallAtLeast(80),
		},
		{
			badge: Badge{
				ID: "structure_master", Name: "Structure Master", Emoji: "📊",
				Animation: "chart", Criterion: "structure score of 85 or more",
			},
			earned: metricAtLeast(evaluation.MetricStructure, 85),
		},
	},
	evaluation.GroupSecondary: {
		{
			badge: Badge{
				ID: "orator", Name: "Master Orator", Emoji: "🏆",
				Animation: "trophy", Criterion: "overall score of 85 or more",
			},
			earned: overallAtLeast(85),
		},
	},
}

// awardBadges evaluates the group's rules in priority order and returns every
// earned badge, highest priority first.
func awardBadges(group evaluation.Group, in awardInput) []Badge {
	var earned []Badge
	for _, rule := range badgeRules[group] {
		if rule.earned(in) {
			earned = append(earned, rule.badge)
		}
	}
	return earned
}

// firstBadge returns the highest-priority earned badge, or nil.
func firstBadge(group evaluation.Group, in awardInput) *Badge {
	earned := awardBadges(group, in)
	if len(earned) == 0 {
		return nil
	}
	return &earned[0]
}
