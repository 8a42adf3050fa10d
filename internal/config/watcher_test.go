package config_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrWong99/orato/internal/config"
)

const watchedYAML = `
server:
  log_level: info
whisper:
  model_path: /models/ggml-base.en.bin
evaluation:
  max_suggestions: 5
`

// startWatcher writes yaml to a temp config file and returns a fast-polling
// watcher over it together with the file path.
func startWatcher(t *testing.T, yaml string, onChange func(old, new *config.Config)) (*config.Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	rewrite(t, path, yaml)

	w, err := config.NewWatcher(path, onChange, config.WithInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, path
}

func rewrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %q failed: %v", path, err)
	}
}

func TestWatcherInitialLoad(t *testing.T) {
	t.Parallel()
	w, _ := startWatcher(t, watchedYAML, nil)

	cfg := w.Current()
	if cfg == nil {
		t.Fatal("Current() = nil after initial load")
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Evaluation.MaxSuggestions != 5 {
		t.Errorf("max_suggestions = %d, want 5", cfg.Evaluation.MaxSuggestions)
	}
}

func TestWatcherInitialLoadFails(t *testing.T) {
	t.Parallel()
	if _, err := config.NewWatcher("/nonexistent/config.yaml", nil); err == nil {
		t.Fatal("NewWatcher on a missing file succeeded, want error")
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	t.Parallel()

	type change struct{ old, new *config.Config }
	changes := make(chan change, 1)
	w, path := startWatcher(t, watchedYAML, func(old, new *config.Config) {
		select {
		case changes <- change{old, new}:
		default:
		}
	})

	// A fresh mtime after the initial load, then new content.
	time.Sleep(100 * time.Millisecond)
	rewrite(t, path, `
server:
  log_level: debug
whisper:
  model_path: /models/ggml-base.en.bin
evaluation:
  max_suggestions: 3
`)

	select {
	case c := <-changes:
		if c.old.Evaluation.MaxSuggestions != 5 {
			t.Errorf("old max_suggestions = %d, want 5", c.old.Evaluation.MaxSuggestions)
		}
		if c.new.Server.LogLevel != config.LogDebug {
			t.Errorf("new log_level = %q, want debug", c.new.Server.LogLevel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change callback never fired")
	}

	if got := w.Current().Evaluation.MaxSuggestions; got != 3 {
		t.Errorf("Current() max_suggestions = %d, want 3", got)
	}
}

func TestWatcherRejectsInvalidEdit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	w, path := startWatcher(t, watchedYAML, func(_, _ *config.Config) {
		calls.Add(1)
	})

	time.Sleep(100 * time.Millisecond)
	rewrite(t, path, "server:\n  log_level: bananas\n")
	time.Sleep(300 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callback fired %d times for an invalid edit, want 0", n)
	}
	if got := w.Current().Server.LogLevel; got != config.LogInfo {
		t.Errorf("Current() log_level = %q, want the previous info", got)
	}
}

func TestWatcherIgnoresTouch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, path := startWatcher(t, watchedYAML, func(_, _ *config.Config) {
		calls.Add(1)
	})

	time.Sleep(100 * time.Millisecond)
	next := time.Now().Add(time.Second)
	if err := os.Chtimes(path, next, next); err != nil {
		t.Fatalf("touching config failed: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callback fired %d times for a touch-only change, want 0", n)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()
	w, _ := startWatcher(t, watchedYAML, nil)
	w.Stop()
	w.Stop()
}
