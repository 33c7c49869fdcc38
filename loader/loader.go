// Package loader implements a deduplicating, multi-waiter resource loader.
//
// Every resource name is fetched at most once per Loader. Concurrent requests
// for the same name share that fetch, and every interested party is notified
// exactly once with either the payload or the error:
//
//	l, _ := loader.New(loader.Options[*bundle.Library]{Fetch: fetchLibrary})
//	h := l.Request(ctx, "hair_F_x", "hh_human_body")
//	if err := h.Wait(ctx); err != nil { ... }      // *LoadError of the first failed name
//	lib, _, _ := l.Get("hair_F_x")                  // re-read payloads by name
//
// Settlement is permanent: a failed name stays failed for the Loader lifetime
// and is never fetched again. Retrying is a caller policy (build a new Loader).
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/wardrobe/log"
)

// ErrNoFetch is returned by New when Options.Fetch is nil.
var ErrNoFetch = errors.New("loader: fetch func is required")

// FetchFunc produces the payload for one resource name.
// It is called at most once per name per Loader.
type FetchFunc[V any] func(ctx context.Context, name string) (V, error)

// Hooks receives loader lifecycle events. Implementations MUST be cheap and non-blocking.
type Hooks interface {
	FetchStarted(name string)
	FetchSettled(name string, err error, elapsed time.Duration)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) FetchStarted(string)                        {}
func (NopHooks) FetchSettled(string, error, time.Duration) {}

// Options tune a Loader. Only Fetch is required.
type Options[V any] struct {
	Fetch FetchFunc[V]

	Logger       log.Logger    // nil => log.NopLogger
	Hooks        Hooks         // nil => NopHooks
	FetchTimeout time.Duration // 0 => fetches are not bounded
}

// Loader owns the name -> resource map. Safe for concurrent use.
type Loader[V any] struct {
	fetch        FetchFunc[V]
	log          log.Logger
	hooks        Hooks
	fetchTimeout time.Duration

	mu        sync.Mutex
	resources map[string]*resource[V]
}

func New[V any](opts Options[V]) (*Loader[V], error) {
	if opts.Fetch == nil {
		return nil, ErrNoFetch
	}
	l := &Loader[V]{
		fetch:        opts.Fetch,
		log:          log.OrNop(opts.Logger),
		hooks:        NopHooks{},
		fetchTimeout: opts.FetchTimeout,
		resources:    make(map[string]*resource[V]),
	}
	if opts.Hooks != nil {
		l.hooks = opts.Hooks
	}
	return l, nil
}

// Request registers interest in names and starts a fetch for every name the
// Loader has never seen. Known names, pending or settled, start nothing.
// Duplicate names collapse. The returned Handle resolves once every name settled.
//
// Fetches run detached from ctx cancellation: a caller that stops caring does
// not abort work that other waiters (or later requests) can reuse.
func (l *Loader[V]) Request(ctx context.Context, names ...string) *Handle[V] {
	h := &Handle[V]{names: make([]string, 0, len(names))}
	var started []*resource[V]

	l.mu.Lock()
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		r, ok := l.resources[name]
		if !ok {
			r = newResource[V](name)
			l.resources[name] = r
			started = append(started, r)
		}
		h.names = append(h.names, name)
		h.res = append(h.res, r)
	}
	l.mu.Unlock()

	if len(started) > 0 {
		fctx := context.WithoutCancel(ctx)
		for _, r := range started {
			go l.run(fctx, r)
		}
	}
	return h
}

// Get returns the payload, state and error of name without requesting it.
// Names never requested report Unknown.
func (l *Loader[V]) Get(name string) (V, State, error) {
	l.mu.Lock()
	r, ok := l.resources[name]
	l.mu.Unlock()
	if !ok {
		var zero V
		return zero, Unknown, nil
	}
	return r.snapshot()
}

// Subscribe registers fn as a waiter on name, requesting it if needed.
// fn runs exactly once: synchronously when name is already settled,
// otherwise on settlement, after waiters registered before it.
func (l *Loader[V]) Subscribe(ctx context.Context, name string, fn func(V, error)) {
	h := l.Request(ctx, name)
	h.res[0].subscribe(fn)
}

// Len reports how many names the Loader knows (any state).
func (l *Loader[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.resources)
}

func (l *Loader[V]) run(ctx context.Context, r *resource[V]) {
	if l.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.fetchTimeout)
		defer cancel()
	}

	l.hooks.FetchStarted(r.name)
	l.log.Debug("fetch started", log.Fields{"name": r.name})
	start := time.Now()

	v, err := l.safeFetch(ctx, r.name)
	elapsed := time.Since(start)

	if err != nil {
		err = &LoadError{Name: r.name, Err: err}
		l.log.Warn("fetch failed", log.Fields{"name": r.name, "err": err, "elapsed": elapsed})
	} else {
		l.log.Debug("fetch ready", log.Fields{"name": r.name, "elapsed": elapsed})
	}
	l.hooks.FetchSettled(r.name, err, elapsed)
	r.settle(v, err)
}

func (l *Loader[V]) safeFetch(ctx context.Context, name string) (v V, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("fetch panic: %v", p)
		}
	}()
	return l.fetch(ctx, name)
}

// Handle is the batch returned by Request.
type Handle[V any] struct {
	names []string
	res   []*resource[V]
}

// Names returns the distinct names in request order.
func (h *Handle[V]) Names() []string {
	return append([]string(nil), h.names...)
}

// Wait blocks until every name settled or ctx is done.
// It returns nil when all are ready, otherwise the *LoadError of the first
// failed name in request order. Cancelling ctx only stops waiting.
func (h *Handle[V]) Wait(ctx context.Context) error {
	for _, r := range h.res {
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, r := range h.res {
		if r.err != nil {
			return r.err
		}
	}
	return nil
}
