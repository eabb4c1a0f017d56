// Package orchestrator drives the index engine: it scans the vault into a
// tag-hierarchy schema, renders index blocks, and reconciles them into the
// documents that request them, with debouncing, retries, and stall recovery.
package orchestrator

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/state"
	"github.com/starford/ansuz/internal/tagpath"
	"github.com/starford/ansuz/internal/vault"
)

// Config carries the engine settings. Zero values fall back to the defaults
// applied in New.
type Config struct {
	IndexTag        string
	MetaIndexTag    string
	PriorityTag     string
	ExcludedFolders []string
	ShowTitle       bool

	UpdateInterval time.Duration // safety-net rescan period
	Debounce       time.Duration // event coalescing window
	ModifyDebounce time.Duration // longer window for edits to index documents
	WriteRetries   int
	RetryBackoff   time.Duration
	WriteGrace     time.Duration // extra delay after a recent external save
}

func (c *Config) applyDefaults() {
	if c.IndexTag == "" {
		c.IndexTag = "index"
	}
	if c.MetaIndexTag == "" {
		c.MetaIndexTag = "metaindex"
	}
	if c.PriorityTag == "" {
		c.PriorityTag = "priority"
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = 5 * time.Minute
	}
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.ModifyDebounce <= 0 {
		c.ModifyDebounce = 10 * time.Second
	}
	if c.WriteRetries <= 0 {
		c.WriteRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
	if c.WriteGrace <= 0 {
		c.WriteGrace = 1500 * time.Millisecond
	}
}

// Notify is called after engine events worth broadcasting: cycle lifecycle
// ("cycle.completed", "cycle.skipped", "cycle.failed") and per-document
// reconciliation ("document.updated").
type Notify func(kind, path string)

// Orchestrator owns the scan/update machinery.
//
// Concurrency model: Run's event loop owns scheduling state (debounce timer,
// tickers) exclusively. Update is guarded by an atomic flag so a trigger
// arriving while a cycle runs is dropped rather than queued; the mutex only
// protects the snapshot and health counters read by other goroutines.
type Orchestrator struct {
	cfg    Config
	vault  vault.Provider
	store  state.Store
	render *render.Renderer
	logger *slog.Logger
	notify Notify

	indexTag string
	metaTag  string
	prioTag  string

	busy      atomic.Bool
	triggerCh chan struct{}

	mu             sync.Mutex
	snapshot       *Schema
	lastFP         int32
	haveFP         bool
	lastSuccess    time.Time
	consecFailures int
}

// New creates an Orchestrator. The persisted fingerprint, if any, is loaded
// so that a restart over an unchanged vault skips its first write cycle.
func New(cfg Config, v vault.Provider, store state.Store, logger *slog.Logger, notify Notify) *Orchestrator {
	cfg.applyDefaults()
	if notify == nil {
		notify = func(string, string) {}
	}
	o := &Orchestrator{
		cfg:       cfg,
		vault:     v,
		store:     store,
		render:    render.New(v, render.Options{ShowTitle: cfg.ShowTitle}),
		logger:    logger,
		notify:    notify,
		indexTag:  tagpath.Canonicalize(cfg.IndexTag),
		metaTag:   tagpath.Canonicalize(cfg.MetaIndexTag),
		prioTag:   tagpath.Canonicalize(cfg.PriorityTag),
		triggerCh: make(chan struct{}, 1),
	}
	if store != nil {
		fp, ok, err := store.Fingerprint()
		if err != nil {
			logger.Warn("orchestrator: load fingerprint failed", slog.String("error", err.Error()))
		} else if ok {
			o.lastFP, o.haveFP = fp, true
		}
	}
	o.lastSuccess = time.Now()
	return o
}

// TriggerUpdate requests an update cycle from the Run loop. It never blocks;
// a request while one is already queued is collapsed into it.
func (o *Orchestrator) TriggerUpdate() {
	select {
	case o.triggerCh <- struct{}{}:
	default:
	}
}

// Running reports whether an update cycle is currently in flight.
func (o *Orchestrator) Running() bool {
	return o.busy.Load()
}

// Snapshot returns the schema produced by the most recent scan, or nil when
// no scan has completed yet.
func (o *Orchestrator) Snapshot() *Schema {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

// Health describes the engine's recent behavior.
type Health struct {
	Running          bool      `json:"running"`
	LastSuccess      time.Time `json:"last_success"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	Fingerprint      int32     `json:"fingerprint"`
}

// Status returns the current engine health.
func (o *Orchestrator) Status() Health {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Health{
		Running:          o.busy.Load(),
		LastSuccess:      o.lastSuccess,
		ConsecutiveFails: o.consecFailures,
		Fingerprint:      o.lastFP,
	}
}
