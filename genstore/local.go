package genstore

import (
	"context"
	"sync"
	"time"
)

type revision struct {
	n       uint64
	touched time.Time // last Bump
}

// LocalGenStore keeps bundle revisions in process memory. Revisions reset on
// restart, so pair it only with an in-process provider (ristretto, bigcache).
//
// Pruning forgets revisions not bumped within the retention window; a
// forgotten revision reads as 0 again. Keep retention above the provider TTL
// so a bundle framed before a failed delete cannot become current again.
type LocalGenStore struct {
	mu   sync.RWMutex
	revs map[string]revision
	now  func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

// NewLocalGenStore returns an empty store. When both cleanupInterval and
// retention are positive, a background loop prunes every cleanupInterval
// until Close.
func NewLocalGenStore(cleanupInterval, retention time.Duration) *LocalGenStore {
	s := &LocalGenStore{
		revs: make(map[string]revision),
		now:  time.Now,
	}
	if cleanupInterval <= 0 || retention <= 0 {
		return s
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.pruneLoop(cleanupInterval, retention)
	return s
}

func (s *LocalGenStore) pruneLoop(every, retention time.Duration) {
	defer close(s.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Cleanup(retention)
		case <-s.stop:
			return
		}
	}
}

func (s *LocalGenStore) Snapshot(_ context.Context, storageKey string) (uint64, error) {
	s.mu.RLock()
	r := s.revs[storageKey]
	s.mu.RUnlock()
	return r.n, nil
}

func (s *LocalGenStore) Bump(_ context.Context, storageKey string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.revs[storageKey]
	r.n++
	r.touched = s.now()
	s.revs[storageKey] = r
	return r.n, nil
}

// Len reports how many revisions are tracked.
func (s *LocalGenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revs)
}

// Cleanup forgets revisions last bumped before now-retention.
func (s *LocalGenStore) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-retention)
	for k, r := range s.revs {
		if r.touched.Before(cutoff) {
			delete(s.revs, k)
		}
	}
}

// Close stops the prune loop. It is safe to call more than once.
func (s *LocalGenStore) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})
	return nil
}
