// Package config provides the configuration schema and loader for the Orato
// evaluation service.
package config

import (
	"log/slog"
	"time"

	"github.com/MrWong99/orato/internal/metric"
)

// LogLevel controls log verbosity for the Orato server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l to its slog level. The empty level maps to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration structure for Orato.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Storage    StorageConfig    `yaml:"storage"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// ServerConfig holds network, logging and upload settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MaxUploadMB caps multipart audio uploads, in mebibytes.
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

// WhisperConfig selects the transcription model.
type WhisperConfig struct {
	// ModelPath is the path to a ggml whisper model file.
	ModelPath string `yaml:"model_path"`

	// Language hints the spoken language (e.g., "en"). Empty means
	// auto-detect.
	Language string `yaml:"language"`
}

// StorageConfig configures the evaluation archive.
type StorageConfig struct {
	// PostgresDSN enables the Postgres archive when set. Empty means
	// completed evaluations are kept in memory only.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// EvaluationConfig tunes the metric evaluators. Zero values fall back to the
// built-in defaults, so a config file only needs the fields it overrides.
type EvaluationConfig struct {
	// MaxSuggestions caps improvement suggestions per result.
	MaxSuggestions int `yaml:"max_suggestions"`

	// FillerWords overrides the detected filler vocabulary.
	FillerWords []string `yaml:"filler_words"`

	// IntroMarkers and ConclusionMarkers override the structure detection
	// phrase lists.
	IntroMarkers      []string `yaml:"intro_markers"`
	ConclusionMarkers []string `yaml:"conclusion_markers"`

	// LongPauseSeconds and ExcessivePauseSeconds override the pause
	// thresholds.
	LongPauseSeconds      float64 `yaml:"long_pause_seconds"`
	ExcessivePauseSeconds float64 `yaml:"excessive_pause_seconds"`

	// LowConfidence is the recognition confidence below which a word counts
	// as unclear, in [0, 1].
	LowConfidence float64 `yaml:"low_confidence"`

	// MinStaminaSeconds is the minimum recording length for stamina
	// analysis.
	MinStaminaSeconds float64 `yaml:"min_stamina_seconds"`
}

// MetricConfig converts the evaluation tuning into evaluator thresholds,
// filling every unset field from the defaults.
func (e EvaluationConfig) MetricConfig() metric.Config {
	cfg := metric.Default()
	if len(e.FillerWords) > 0 {
		cfg.FillerWords = e.FillerWords
	}
	if len(e.IntroMarkers) > 0 {
		cfg.IntroMarkers = e.IntroMarkers
	}
	if len(e.ConclusionMarkers) > 0 {
		cfg.ConclusionMarkers = e.ConclusionMarkers
	}
	if e.LongPauseSeconds > 0 {
		cfg.LongPause = time.Duration(e.LongPauseSeconds * float64(time.Second))
	}
	if e.ExcessivePauseSeconds > 0 {
		cfg.ExcessivePause = time.Duration(e.ExcessivePauseSeconds * float64(time.Second))
	}
	if e.LowConfidence > 0 {
		cfg.LowConfidence = e.LowConfidence
	}
	if e.MinStaminaSeconds > 0 {
		cfg.MinStaminaDuration = time.Duration(e.MinStaminaSeconds * float64(time.Second))
	}
	return cfg
}

// MaxUploadBytes returns the upload cap in bytes, or 0 when unset.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
