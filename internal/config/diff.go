package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// storage changes require a restart.
type ConfigDiff struct {
	LogLevelChanged   bool
	NewLogLevel       LogLevel
	EvaluationChanged bool
}

// Changed reports whether the diff contains any reloadable change.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.EvaluationChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if !evaluationEqual(old.Evaluation, new.Evaluation) {
		d.EvaluationChanged = true
	}

	return d
}

func evaluationEqual(a, b EvaluationConfig) bool {
	return a.MaxSuggestions == b.MaxSuggestions &&
		a.LongPauseSeconds == b.LongPauseSeconds &&
		a.ExcessivePauseSeconds == b.ExcessivePauseSeconds &&
		a.LowConfidence == b.LowConfidence &&
		a.MinStaminaSeconds == b.MinStaminaSeconds &&
		slices.Equal(a.FillerWords, b.FillerWords) &&
		slices.Equal(a.IntroMarkers, b.IntroMarkers) &&
		slices.Equal(a.ConclusionMarkers, b.ConclusionMarkers)
}
