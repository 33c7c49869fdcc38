package loader

import "sync"

// State is the load state of one resource name.
type State uint8

const (
	Unknown State = iota
	Pending
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// resource settles exactly once. done is closed on settlement; after that
// val/err are immutable and may be read without the lock.
type resource[V any] struct {
	name string
	done chan struct{}

	mu      sync.Mutex
	state   State
	val     V
	err     error
	waiters []func(V, error)
}

func newResource[V any](name string) *resource[V] {
	return &resource[V]{name: name, done: make(chan struct{}), state: Pending}
}

func (r *resource[V]) snapshot() (V, State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val, r.state, r.err
}

func (r *resource[V]) subscribe(fn func(V, error)) {
	r.mu.Lock()
	if r.state == Pending {
		r.waiters = append(r.waiters, fn)
		r.mu.Unlock()
		return
	}
	v, err := r.val, r.err
	r.mu.Unlock()
	fn(v, err)
}

func (r *resource[V]) settle(v V, err error) {
	r.mu.Lock()
	if r.state != Pending {
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.state = Failed
		r.err = err
	} else {
		r.state = Ready
		r.val = v
	}
	waiters := r.waiters
	r.waiters = nil
	close(r.done)
	r.mu.Unlock()

	// registration order; each waiter dropped after it runs
	for _, fn := range waiters {
		fn(r.val, r.err)
	}
}
