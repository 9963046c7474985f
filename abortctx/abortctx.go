// Package abortctx implements the Abort/Timeout Manager (C13): a small
// composable wrapper around context.WithTimeout/context.WithCancel that
// records which cancellation tier fired, generalizing the teacher's single
// per-request timeout context (scraper/page.go) to N tiers.
package abortctx

import (
	"context"
	"sync"
	"time"
)

// Tier names surfaced on error attribution.
const (
	TierNone    = ""
	TierTimeout = "timeout"
	TierAbort   = "abort"
)

// Manager composes multiple cancellation tiers into a single signal.
// Exactly one tier is recorded as "first to fire".
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	tier string
}

// New builds a Manager from parent (an external abort signal, e.g. the
// crawl-level or server-level context) and a per-scrape timeout derived
// from options.timeout. Either may be zero/nil to omit that tier.
func New(parent context.Context, timeout time.Duration) *Manager {
	if parent == nil {
		parent = context.Background()
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	m := &Manager{ctx: ctx, cancel: cancel}

	go m.watch(parent, timeout)

	return m
}

// watch records which tier caused the composite context to end.
func (m *Manager) watch(parent context.Context, timeout time.Duration) {
	<-m.ctx.Done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tier != "" {
		return
	}
	if parent.Err() != nil {
		m.tier = TierAbort
	} else if timeout > 0 {
		m.tier = TierTimeout
	} else {
		m.tier = TierAbort
	}
}

// Context returns the composite context to pass to every suspension point.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Done implements models.CancelSignal.
func (m *Manager) Done() <-chan struct{} {
	return m.ctx.Done()
}

// Err implements models.CancelSignal.
func (m *Manager) Err() error {
	return m.ctx.Err()
}

// Tier implements models.CancelSignal, reporting which tier fired ("" if
// the manager has not been cancelled).
func (m *Manager) Tier() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tier
}

// Release clears the timer and any associated resources. Must be called
// on every exit path from the scrape pipeline (spec.md §4.12: "the
// manager guarantees all timers are cleared on scrape completion
// regardless of outcome").
func (m *Manager) Release() {
	m.cancel()
}
