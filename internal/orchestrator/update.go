package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/blocks"
	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/models"
)

// Update runs one full cycle: scan, fingerprint comparison, and per-document
// reconciliation. A cycle already in flight makes it return ErrUpdateRunning
// without doing anything. Failures on individual documents are isolated; the
// cycle always completes and releases its guard.
func (o *Orchestrator) Update(ctx context.Context) error {
	if !o.busy.CompareAndSwap(false, true) {
		return apperr.ErrUpdateRunning
	}
	defer o.busy.Store(false)

	started := time.Now()

	schema, err := o.Scan(ctx)
	if err != nil {
		o.finishCycle(models.CycleRecord{
			StartedAt:  started,
			FinishedAt: time.Now(),
			Status:     models.CycleFailed,
			Error:      err.Error(),
		}, nil, false)
		o.notify("cycle.failed", "")
		return fmt.Errorf("orchestrator: scan: %w", err)
	}

	fp := schema.Fingerprint()

	o.mu.Lock()
	unchanged := o.haveFP && fp == o.lastFP
	o.mu.Unlock()

	if unchanged {
		o.logger.Debug("update: schema unchanged, skipping writes",
			slog.Int64("fingerprint", int64(fp)))
		o.finishCycle(models.CycleRecord{
			StartedAt:   started,
			FinishedAt:  time.Now(),
			Fingerprint: fp,
			Status:      models.CycleSkipped,
		}, schema, true)
		o.notify("cycle.skipped", "")
		return nil
	}

	written, failed := 0, 0
	for i := range schema.Descriptors {
		d := &schema.Descriptors[i]
		desired := o.renderBlocks(schema.Root, d)
		if err := o.reconcileDocument(ctx, d.Doc, desired); err != nil {
			failed++
			o.logger.Error("update: document reconcile failed",
				slog.String("path", d.Doc.Path),
				slog.String("error", err.Error()))
			continue
		}
		written++
		o.notify("document.updated", d.Doc.Path)
	}

	status := models.CycleSuccess
	if failed > 0 {
		status = models.CyclePartial
	}
	rec := models.CycleRecord{
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Fingerprint: fp,
		DocsWritten: written,
		DocsFailed:  failed,
		Status:      status,
	}
	o.finishCycle(rec, schema, true)
	if o.store != nil {
		if err := o.store.SetFingerprint(fp); err != nil {
			o.logger.Warn("update: persist fingerprint failed", slog.String("error", err.Error()))
		}
	}
	o.notify("cycle.completed", "")

	o.logger.Info("update: cycle finished",
		slog.String("status", status),
		slog.Int("written", written),
		slog.Int("failed", failed),
		slog.Duration("took", rec.FinishedAt.Sub(started)))
	return nil
}

// finishCycle records the cycle and updates health counters. success marks
// the cycle as a completed pass for stall-detection purposes.
func (o *Orchestrator) finishCycle(rec models.CycleRecord, schema *Schema, success bool) {
	o.mu.Lock()
	if schema != nil {
		o.snapshot = schema
	}
	if success {
		o.lastFP = rec.Fingerprint
		o.haveFP = true
		o.lastSuccess = rec.FinishedAt
		o.consecFailures = 0
	} else {
		o.consecFailures++
	}
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.RecordCycle(rec); err != nil {
			o.logger.Warn("update: record cycle failed", slog.String("error", err.Error()))
		}
	}
}

// renderBlocks produces the desired block list for one descriptor: index
// blocks in declared order, then meta-index blocks.
func (o *Orchestrator) renderBlocks(root *hierarchy.Node, d *Descriptor) []blocks.Block {
	out := make([]blocks.Block, 0, len(d.IndexTags)+len(d.MetaTags))
	for _, p := range d.IndexTags {
		if n := root.Find(p); n != nil {
			out = append(out, o.render.IndexBlock(n, d.Doc))
		}
	}
	for _, p := range d.MetaTags {
		if n := root.Find(p); n != nil {
			out = append(out, o.render.MetaIndexBlock(n, d.Doc))
		}
	}
	return out
}

// reconcileDocument writes the desired blocks into one document with bounded
// exponential backoff. A document saved externally within the last couple of
// seconds gets a short grace delay first, to avoid racing that save.
func (o *Orchestrator) reconcileDocument(ctx context.Context, doc models.DocRef, desired []blocks.Block) error {
	if mt, err := o.vault.ModTime(doc.Path); err == nil && time.Since(mt) < 2*time.Second {
		if err := sleepCtx(ctx, o.cfg.WriteGrace); err != nil {
			return err
		}
	}

	backoff := o.cfg.RetryBackoff
	var lastErr error
	for attempt := 0; attempt <= o.cfg.WriteRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
		}
		err := o.vault.Transform(doc.Path, func(text string) string {
			return blocks.Reconcile(text, desired)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		o.logger.Warn("update: write attempt failed",
			slog.String("path", doc.Path),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	return lastErr
}

// Preview performs a dry run: it scans and renders like Update but writes
// nothing, reporting how many documents would change.
func (o *Orchestrator) Preview(ctx context.Context) (changed, total int, err error) {
	schema, err := o.Scan(ctx)
	if err != nil {
		return 0, 0, err
	}
	for i := range schema.Descriptors {
		d := &schema.Descriptors[i]
		text, err := o.vault.Read(d.Doc.Path)
		if err != nil {
			continue
		}
		total++
		if blocks.Reconcile(text, o.renderBlocks(schema.Root, d)) != text {
			changed++
		}
	}
	return changed, total, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
