// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    PartSkippedEvery: 10, // sample logs: ~every 10th skipped part
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	comp, _ := wardrobe.New(wardrobe.Options{
//	    Catalog: cat,
//	    Loader:  ld,
//	    Surface: surf,
//	    Hooks:   hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/wardrobe"
	"github.com/unkn0wn-root/wardrobe/render"
)

// Hooks runs the inner hooks on worker goroutines. Events are dropped when
// the queue is full; Dropped counts them.
type Hooks struct {
	inner   wardrobe.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ wardrobe.Hooks = (*Hooks)(nil)

func New(inner wardrobe.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) EntrySelected(id string) { h.try(func() { h.inner.EntrySelected(id) }) }
func (h *Hooks) CompositionComplete(id string, tex *render.Texture) {
	h.try(func() { h.inner.CompositionComplete(id, tex) })
}
func (h *Hooks) CompositionFailed(id string, err error) {
	h.try(func() { h.inner.CompositionFailed(id, err) })
}
func (h *Hooks) PartSkipped(id, typ, reason string) {
	h.try(func() { h.inner.PartSkipped(id, typ, reason) })
}
