package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.MaxUploadMB < 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb %d must not be negative", cfg.Server.MaxUploadMB))
	}

	// Whisper
	if cfg.Whisper.ModelPath == "" {
		slog.Warn("whisper.model_path is empty; transcription requires a model file at startup")
	}

	// Storage
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; completed evaluations will not be archived")
	}

	// Evaluation tuning
	ev := cfg.Evaluation
	if ev.MaxSuggestions < 0 {
		errs = append(errs, fmt.Errorf("evaluation.max_suggestions %d must not be negative", ev.MaxSuggestions))
	}
	if ev.LowConfidence < 0 || ev.LowConfidence > 1 {
		errs = append(errs, fmt.Errorf("evaluation.low_confidence %.2f is out of range [0, 1]", ev.LowConfidence))
	}
	if ev.LongPauseSeconds < 0 {
		errs = append(errs, fmt.Errorf("evaluation.long_pause_seconds %.2f must not be negative", ev.LongPauseSeconds))
	}
	if ev.ExcessivePauseSeconds < 0 {
		errs = append(errs, fmt.Errorf("evaluation.excessive_pause_seconds %.2f must not be negative", ev.ExcessivePauseSeconds))
	}
	if ev.LongPauseSeconds > 0 && ev.ExcessivePauseSeconds > 0 && ev.ExcessivePauseSeconds <= ev.LongPauseSeconds {
		errs = append(errs, fmt.Errorf("evaluation.excessive_pause_seconds %.2f must exceed long_pause_seconds %.2f", ev.ExcessivePauseSeconds, ev.LongPauseSeconds))
	}
	if ev.MinStaminaSeconds < 0 {
		errs = append(errs, fmt.Errorf("evaluation.min_stamina_seconds %.2f must not be negative", ev.MinStaminaSeconds))
	}

	return errors.Join(errs...)
}
