// Package sloghooks logs compositor and loader events with log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/wardrobe"
	"github.com/unkn0wn-root/wardrobe/loader"
	"github.com/unkn0wn-root/wardrobe/render"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PartSkippedEvery uint64
	// FetchSlow logs settled fetches slower than this at Warn; 0 disables.
	FetchSlow time.Duration
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	skippedCtr atomic.Uint64
}

var (
	_ wardrobe.Hooks = (*Hooks)(nil)
	_ loader.Hooks   = (*Hooks)(nil)
)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EntrySelected(entryID string) {
	if h.l == nil {
		return
	}
	h.l.Info("wardrobe.entry_selected", "entry", entryID)
}

func (h *Hooks) CompositionComplete(entryID string, tex *render.Texture) {
	if h.l == nil {
		return
	}
	attrs := []any{"entry", entryID}
	if tex != nil {
		attrs = append(attrs, "w", tex.Width(), "h", tex.Height())
	}
	h.l.Debug("wardrobe.composition_complete", attrs...)
}

func (h *Hooks) CompositionFailed(entryID string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("wardrobe.composition_failed",
		"entry", entryID,
		"err", err)
}

func (h *Hooks) PartSkipped(entryID, partType, reason string) {
	if h.l == nil || !sample(h.opts.PartSkippedEvery, &h.skippedCtr) {
		return
	}
	h.l.Debug("wardrobe.part_skipped",
		"entry", entryID,
		"type", partType,
		"reason", reason)
}

func (h *Hooks) FetchStarted(name string) {
	if h.l == nil {
		return
	}
	h.l.Debug("wardrobe.fetch_started", "library", name)
}

func (h *Hooks) FetchSettled(name string, err error, elapsed time.Duration) {
	if h.l == nil {
		return
	}
	switch {
	case err != nil:
		h.l.Error("wardrobe.fetch_failed",
			"library", name,
			"elapsed", elapsed,
			"err", err)
	case h.opts.FetchSlow > 0 && elapsed > h.opts.FetchSlow:
		h.l.Warn("wardrobe.fetch_slow",
			"library", name,
			"elapsed", elapsed)
	default:
		h.l.Debug("wardrobe.fetch_ready",
			"library", name,
			"elapsed", elapsed)
	}
}
