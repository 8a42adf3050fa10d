package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrArchiveUnavailable is returned by [Guard.Save] while the write breaker
// is open.
var ErrArchiveUnavailable = errors.New("store: archive unavailable")

// Guard wraps a [Store] with a circuit breaker on writes. Archiving is
// best-effort and runs once per completed job, so when the database goes
// down the pipeline should stop paying a connection timeout per job instead
// of queueing up blocked writes. Reads pass through untouched; their errors
// surface to the caller directly.
//
// The breaker opens after MaxFailures consecutive Save failures. While open,
// Save returns [ErrArchiveUnavailable] immediately. After Cooldown elapses a
// single probe write is allowed through; success closes the breaker, failure
// re-opens it for another cooldown.
type Guard struct {
	inner       Store
	maxFailures int
	cooldown    time.Duration

	mu       sync.Mutex
	fails    int
	open     bool
	probing  bool
	openedAt time.Time
}

// Compile-time interface check.
var _ Store = (*Guard)(nil)

// GuardOption customises a [Guard].
type GuardOption func(*Guard)

// WithMaxFailures sets how many consecutive Save failures open the breaker.
// Default: 5.
func WithMaxFailures(n int) GuardOption {
	return func(g *Guard) { g.maxFailures = n }
}

// WithCooldown sets how long the breaker stays open before allowing a probe
// write. Default: 30s.
func WithCooldown(d time.Duration) GuardOption {
	return func(g *Guard) { g.cooldown = d }
}

// NewGuard wraps inner with a write circuit breaker.
func NewGuard(inner Store, opts ...GuardOption) *Guard {
	g := &Guard{
		inner:       inner,
		maxFailures: 5,
		cooldown:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxFailures <= 0 {
		g.maxFailures = 5
	}
	if g.cooldown <= 0 {
		g.cooldown = 30 * time.Second
	}
	return g
}

// Save forwards to the wrapped store unless the breaker is open.
func (g *Guard) Save(ctx context.Context, rec *Record) error {
	if !g.allow() {
		return ErrArchiveUnavailable
	}
	err := g.inner.Save(ctx, rec)
	g.record(err)
	return err
}

// Get forwards to the wrapped store.
func (g *Guard) Get(ctx context.Context, jobID string) (*Record, error) {
	return g.inner.Get(ctx, jobID)
}

// List forwards to the wrapped store.
func (g *Guard) List(ctx context.Context, limit int) ([]Record, error) {
	return g.inner.List(ctx, limit)
}

// Delete forwards to the wrapped store.
func (g *Guard) Delete(ctx context.Context, jobID string) error {
	return g.inner.Delete(ctx, jobID)
}

// allow reports whether a write may proceed, claiming the probe slot when
// the cooldown has elapsed.
func (g *Guard) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return true
	}
	if g.probing || time.Since(g.openedAt) < g.cooldown {
		return false
	}
	g.probing = true
	slog.Info("archive breaker probing after cooldown")
	return true
}

// record updates breaker state after a write attempt.
func (g *Guard) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		if g.open {
			slog.Info("archive breaker closed, writes restored")
		}
		g.open = false
		g.probing = false
		g.fails = 0
		return
	}

	g.fails++
	if g.open {
		// Failed probe, back to waiting.
		g.probing = false
		g.openedAt = time.Now()
		slog.Warn("archive breaker probe failed, staying open", "err", err)
		return
	}
	if g.fails >= g.maxFailures {
		g.open = true
		g.openedAt = time.Now()
		slog.Warn("archive breaker opened, suspending writes",
			"consecutive_failures", g.fails,
			"cooldown", g.cooldown,
		)
	}
}
