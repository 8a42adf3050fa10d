package evaluation

import (
	"errors"
	"fmt"
	"math"
)

// Group is an age bracket for scoring and presentation purposes.
type Group string

const (
	GroupPrePrimary   Group = "pre_primary"   // ages 3-5
	GroupLowerPrimary Group = "lower_primary" // ages 6-8
	GroupUpperPrimary Group = "upper_primary" // ages 9-10
	GroupMiddle       Group = "middle"        // ages 11-13
	GroupSecondary    Group = "secondary"     // ages 14-18
)

// IsValid reports whether g is one of the five known age groups.
func (g Group) IsValid() bool {
	switch g {
	case GroupPrePrimary, GroupLowerPrimary, GroupUpperPrimary, GroupMiddle, GroupSecondary:
		return true
	}
	return false
}

// Young reports whether g gets the lenient scoring treatment reserved for
// the youngest speakers.
func (g Group) Young() bool {
	return g == GroupPrePrimary || g == GroupLowerPrimary
}

// Supported age range for evaluation requests.
const (
	MinAge = 3
	MaxAge = 18
)

// Profile bundles everything that is age-dependent about scoring: the ideal
// speaking pace, tolerated filler and pause ratios, and the weight of each
// metric in the overall score.
type Profile struct {
	Group           Group
	MinAge, MaxAge  int
	MinWPM, MaxWPM  int
	FillerTolerance float64 // tolerated fillers as a share of all words
	PauseTolerance  float64 // tolerated long-pause share
	Weights         map[MetricID]float64
}

var profiles = []Profile{
	{
		Group: GroupPrePrimary, MinAge: 3, MaxAge: 5,
		MinWPM: 40, MaxWPM: 90,
		FillerTolerance: 0.15, PauseTolerance: 0.30,
		Weights: map[MetricID]float64{
			MetricClarity: 0.25, MetricPace: 0.20, MetricPauseManagement: 0.15,
			MetricFillerReduction: 0.10, MetricRepetitionControl: 0.05, MetricStructure: 0.05,
			MetricLoudness: 0.15, MetricPitchVariation: 0.05, MetricStamina: 0.00,
		},
	},
	{
		Group: GroupLowerPrimary, MinAge: 6, MaxAge: 8,
		MinWPM: 60, MaxWPM: 110,
		FillerTolerance: 0.12, PauseTolerance: 0.25,
		Weights: map[MetricID]float64{
			MetricClarity: 0.20, MetricPace: 0.15, MetricPauseManagement: 0.15,
			MetricFillerReduction: 0.10, MetricRepetitionControl: 0.05, MetricStructure: 0.05,
			MetricLoudness: 0.15, MetricPitchVariation: 0.10, MetricStamina: 0.05,
		},
	},
	{
		Group: GroupUpperPrimary, MinAge: 9, MaxAge: 10,
		MinWPM: 80, MaxWPM: 130,
		FillerTolerance: 0.10, PauseTolerance: 0.20,
		Weights: map[MetricID]float64{
			MetricClarity: 0.18, MetricPace: 0.15, MetricPauseManagement: 0.12,
			MetricFillerReduction: 0.10, MetricRepetitionControl: 0.08, MetricStructure: 0.07,
			MetricLoudness: 0.12, MetricPitchVariation: 0.10, MetricStamina: 0.08,
		},
	},
	{
		Group: GroupMiddle, MinAge: 11, MaxAge: 13,
		MinWPM: 100, MaxWPM: 150,
		FillerTolerance: 0.08, PauseTolerance: 0.15,
		Weights: map[MetricID]float64{
			MetricClarity: 0.15, MetricPace: 0.12, MetricPauseManagement: 0.10,
			MetricFillerReduction: 0.12, MetricRepetitionControl: 0.12, MetricStructure: 0.15,
			MetricLoudness: 0.08, MetricPitchVariation: 0.08, MetricStamina: 0.08,
		},
	},
	{
		Group: GroupSecondary, MinAge: 14, MaxAge: 18,
		MinWPM: 120, MaxWPM: 160,
		FillerTolerance: 0.05, PauseTolerance: 0.10,
		Weights: map[MetricID]float64{
			MetricClarity: 0.12, MetricPace: 0.10, MetricPauseManagement: 0.08,
			MetricFillerReduction: 0.12, MetricRepetitionControl: 0.12, MetricStructure: 0.20,
			MetricLoudness: 0.08, MetricPitchVariation: 0.10, MetricStamina: 0.08,
		},
	},
}

// Classify maps a student age to its scoring profile. Ages outside the
// supported range return a *ValidationError.
func Classify(age int) (Profile, error) {
	if age < MinAge || age > MaxAge {
		return Profile{}, &ValidationError{
			Field:  "student_age",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinAge, MaxAge, age),
		}
	}
	for _, p := range profiles {
		if age >= p.MinAge && age <= p.MaxAge {
			return p, nil
		}
	}
	// Unreachable as long as the profile table covers the supported range.
	return Profile{}, &InternalError{Err: fmt.Errorf("no profile covers age %d", age)}
}

// ProfileFor returns the profile for a known group.
func ProfileFor(g Group) (Profile, bool) {
	for _, p := range profiles {
		if p.Group == g {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns all age profiles in ascending age order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// weightSumTolerance is the permitted deviation of a profile's weight sum
// from 1.0.
const weightSumTolerance = 1e-6

// ValidateProfiles checks every profile's invariants: contiguous coverage of
// the supported age range, a sane WPM window and metric weights summing to
// 1.0. Intended to run once at startup; any error is fatal.
func ValidateProfiles() error {
	var errs []error
	nextAge := MinAge
	for _, p := range profiles {
		if !p.Group.IsValid() {
			errs = append(errs, fmt.Errorf("profile %q: unknown group", p.Group))
		}
		if p.MinAge != nextAge {
			errs = append(errs, fmt.Errorf("profile %q: age coverage gap, expected min age %d, got %d", p.Group, nextAge, p.MinAge))
		}
		nextAge = p.MaxAge + 1
		if p.MinWPM <= 0 || p.MaxWPM <= p.MinWPM {
			errs = append(errs, fmt.Errorf("profile %q: invalid wpm range %d-%d", p.Group, p.MinWPM, p.MaxWPM))
		}
		var sum float64
		for _, id := range MetricOrder {
			w, ok := p.Weights[id]
			if !ok {
				errs = append(errs, fmt.Errorf("profile %q: missing weight for metric %s", p.Group, id))
				continue
			}
			if w < 0 {
				errs = append(errs, fmt.Errorf("profile %q: negative weight for metric %s", p.Group, id))
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightSumTolerance {
			errs = append(errs, fmt.Errorf("profile %q: weights sum to %.7f, want 1.0", p.Group, sum))
		}
	}
	if nextAge != MaxAge+1 {
		errs = append(errs, fmt.Errorf("profiles stop at age %d, want %d", nextAge-1, MaxAge))
	}
	return errors.Join(errs...)
}
