// Package fetch provides byte sources for library bundles: a directory, an
// HTTP origin, and a read-through byte cache in front of either.
//
// Bundles live at <root>/<name>/<name><ext>, the layout asset exporters produce.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultExt is the bundle file extension used when none is configured.
const DefaultExt = ".json"

var ErrBadName = errors.New("fetch: invalid bundle name")

// Source returns the raw bytes of one bundle.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, name string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, name string) ([]byte, error) { return f(ctx, name) }

// StatusError is a non-2xx answer from an HTTP origin.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Code)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

func coalesceExt(ext string) string {
	if ext == "" {
		return DefaultExt
	}
	return ext
}
