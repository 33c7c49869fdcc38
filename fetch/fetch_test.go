package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/wardrobe/genstore"
	"github.com/unkn0wn-root/wardrobe/internal/wire"
	pr "github.com/unkn0wn-root/wardrobe/provider"
)

type memEntry struct {
	v   []byte
	exp time.Time
}

type memProvider struct {
	mu   sync.Mutex
	m    map[string]memEntry
	sets int
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: value, exp: exp}
	p.sets++
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

func (p *memProvider) raw(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	return e.v, ok
}

func (p *memProvider) put(key string, v []byte) {
	p.mu.Lock()
	p.m[key] = memEntry{v: v}
	p.mu.Unlock()
}

// countingSource returns "<name>#<n>" where n counts calls.
type countingSource struct{ calls atomic.Int64 }

func (s *countingSource) Fetch(_ context.Context, name string) ([]byte, error) {
	n := s.calls.Add(1)
	return []byte(name + "#" + string(rune('0'+n))), nil
}

func newTestCached(t *testing.T, inner Source, mp pr.Provider) *Cached {
	t.Helper()
	c, err := NewCached(CachedOptions{Inner: inner, Provider: mp, Namespace: "test"})
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestDirReadsNestedBundle(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "hh_human_hair"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := []byte(`{"name":"hh_human_hair"}`)
	if err := os.WriteFile(filepath.Join(root, "hh_human_hair", "hh_human_hair.json"), want, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Dir{Root: root}.Fetch(context.Background(), "hh_human_hair")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}

	if _, err := (Dir{Root: root}).Fetch(context.Background(), "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing bundle err=%v want ErrNotExist", err)
	}
}

func TestDirRejectsTraversal(t *testing.T) {
	for _, name := range []string{"", "..", "../etc", `a\b`} {
		if _, err := (Dir{Root: t.TempDir()}).Fetch(context.Background(), name); !errors.Is(err, ErrBadName) {
			t.Fatalf("Fetch(%q) err=%v want ErrBadName", name, err)
		}
	}
}

func TestHTTPFetchAndStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hh_human_body/hh_human_body.bin" {
			_, _ = w.Write([]byte("body-bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	h := HTTP{BaseURL: srv.URL + "/", Client: srv.Client(), Ext: ".bin"}
	got, err := h.Fetch(context.Background(), "hh_human_body")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != "body-bytes" {
		t.Fatalf("got %q", got)
	}

	_, err = h.Fetch(context.Background(), "nope")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("err=%v want *StatusError 404", err)
	}
}

func TestHTTPMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	t.Cleanup(srv.Close)

	h := HTTP{BaseURL: srv.URL, Client: srv.Client(), MaxBytes: 16}
	if _, err := h.Fetch(context.Background(), "big"); err == nil {
		t.Fatalf("expected size error")
	}
}

func TestCachedReadThrough(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	mp := newMemProvider()
	c := newTestCached(t, src, mp)

	for i := 0; i < 3; i++ {
		b, err := c.Fetch(ctx, "hh_human_hair")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(b) != "hh_human_hair#1" {
			t.Fatalf("round %d got %q", i, b)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("inner calls=%d want 1", n)
	}
	if _, ok := mp.raw("bundle:test:hh_human_hair"); !ok {
		t.Fatalf("entry not stored under bundle:<ns>:<name>")
	}
}

func TestCachedSelfHealsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	mp := newMemProvider()
	c := newTestCached(t, src, mp)

	mp.put(c.Key("hr"), []byte("not a frame"))
	b, err := c.Fetch(ctx, "hr")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(b) != "hr#1" {
		t.Fatalf("got %q want fresh fetch", b)
	}
	raw, _ := mp.raw(c.Key("hr"))
	if _, p, err := wire.Decode(raw); err != nil || string(p) != "hr#1" {
		t.Fatalf("healed entry=%q err=%v", p, err)
	}
}

func TestCachedInvalidateRefetches(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	mp := newMemProvider()
	c := newTestCached(t, src, mp)

	if _, err := c.Fetch(ctx, "hr"); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "hr"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	b, err := c.Fetch(ctx, "hr")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hr#2" {
		t.Fatalf("got %q want refetch after invalidate", b)
	}
}

// A copy written under an older revision (another replica that missed the
// bump) is rejected as stale.
func TestCachedRejectsStaleRevision(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	mp := newMemProvider()
	revs := genstore.NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = revs.Close(ctx) })

	c, err := NewCached(CachedOptions{Inner: src, Provider: mp, Revisions: revs, Namespace: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := revs.Bump(ctx, c.Key("hr")); err != nil {
		t.Fatal(err)
	}
	mp.put(c.Key("hr"), wire.Encode(0, []byte("old")))

	b, err := c.Fetch(ctx, "hr")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hr#1" {
		t.Fatalf("served %q from a stale revision", b)
	}
}

func TestCachedInnerErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("origin down")
	mp := newMemProvider()
	c := newTestCached(t, SourceFunc(func(context.Context, string) ([]byte, error) { return nil, boom }), mp)

	if _, err := c.Fetch(ctx, "hr"); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
	if mp.sets != 0 {
		t.Fatalf("failed fetch was stored")
	}
}

func TestNewCachedValidates(t *testing.T) {
	if _, err := NewCached(CachedOptions{Provider: newMemProvider()}); !errors.Is(err, ErrNoInner) {
		t.Fatalf("err=%v want ErrNoInner", err)
	}
	if _, err := NewCached(CachedOptions{Inner: Dir{}}); err == nil {
		t.Fatalf("expected error without provider")
	}
}
