package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/tagpath"
	"github.com/starford/ansuz/internal/vault"
)

// stallFactor is the multiple of the update interval after which the health
// check considers the engine stalled.
const stallFactor = 4

// escalateAfter is the consecutive-failure count that upgrades the stall
// warning to an error.
const escalateAfter = 3

// Run executes the scheduling loop until ctx is cancelled: an initial update,
// debounced event-driven updates, a fixed-period safety-net rescan, and a
// periodic health check with automatic recovery. All update cycles run on
// this loop; concurrent triggers are dropped by the cycle guard.
func (o *Orchestrator) Run(ctx context.Context, events <-chan vault.Event) error {
	if err := o.Update(ctx); err != nil && !errors.Is(err, apperr.ErrUpdateRunning) {
		o.logger.Warn("run: initial update failed", slog.String("error", err.Error()))
	}

	safety := time.NewTicker(o.cfg.UpdateInterval)
	defer safety.Stop()
	health := time.NewTicker(o.cfg.UpdateInterval)
	defer health.Stop()

	// Single-slot debounce: a new schedule request replaces any pending one,
	// collapsing event bursts into one eventual update.
	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func(d time.Duration) {
		if debounce == nil {
			debounce = time.NewTimer(d)
			debounceCh = debounce.C
		} else {
			debounce.Reset(d)
		}
	}

	o.logger.Info("orchestrator: started",
		slog.Duration("interval", o.cfg.UpdateInterval),
		slog.Duration("debounce", o.cfg.Debounce))

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			o.logger.Info("orchestrator: stopped")
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			o.handleEvent(ev, schedule)

		case <-debounceCh:
			o.runCycle(ctx, "debounce")

		case <-o.triggerCh:
			o.runCycle(ctx, "trigger")

		case <-safety.C:
			o.runCycle(ctx, "interval")

		case <-health.C:
			o.healthCheck(ctx)
		}
	}
}

// handleEvent schedules an update for one vault change. Content writes to a
// document that itself carries index tags get a longer window, so a cycle
// does not race the author mid-edit; writes to a document that only holds a
// stale marker get the normal short window for prompt cleanup.
func (o *Orchestrator) handleEvent(ev vault.Event, schedule func(time.Duration)) {
	o.logger.Debug("event", slog.String("kind", ev.Kind), slog.String("path", ev.Path))

	if ev.Kind != vault.EventModified {
		schedule(o.cfg.Debounce)
		return
	}

	raw, err := o.vault.Read(ev.Path)
	if err != nil {
		schedule(o.cfg.Debounce)
		return
	}
	res := parser.Parse([]byte(raw))
	for _, t := range res.Tags {
		p := tagpath.Canonicalize(t)
		last := tagpath.LastComponent(p)
		if last == o.indexTag || last == o.metaTag {
			schedule(o.cfg.ModifyDebounce)
			return
		}
	}
	// Tags may have changed, or a stale marker may need cleanup.
	schedule(o.cfg.Debounce)
}

func (o *Orchestrator) runCycle(ctx context.Context, reason string) {
	err := o.Update(ctx)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrUpdateRunning):
		o.logger.Debug("run: update already in flight", slog.String("reason", reason))
	default:
		o.logger.Error("run: update failed",
			slog.String("reason", reason),
			slog.String("error", err.Error()))
	}
}

// healthCheck verifies that a successful cycle completed recently. A stalled
// engine triggers a recovery update; repeated consecutive failures escalate
// the log level.
func (o *Orchestrator) healthCheck(ctx context.Context) {
	o.mu.Lock()
	last := o.lastSuccess
	fails := o.consecFailures
	o.mu.Unlock()

	stale := time.Since(last)
	if stale <= stallFactor*o.cfg.UpdateInterval {
		return
	}

	if fails >= escalateAfter {
		o.logger.Error("health: engine stalled, recovery failing",
			slog.Duration("since_success", stale),
			slog.Int("consecutive_failures", fails))
	} else {
		o.logger.Warn("health: no recent successful cycle, attempting recovery",
			slog.Duration("since_success", stale))
	}
	o.runCycle(ctx, "recovery")
}
