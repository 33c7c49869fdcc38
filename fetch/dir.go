package fetch

import (
	"context"
	"os"
	"path/filepath"
)

// Dir reads bundles from a local directory tree.
type Dir struct {
	Root string
	Ext  string // "" => DefaultExt
}

var _ Source = Dir{}

func (d Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(d.Root, name, name+coalesceExt(d.Ext)))
}
