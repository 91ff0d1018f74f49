package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes uploads under Dir, to be served statically at URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func (l Local) Put(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(l.Dir, filepath.FromSlash(obj.Key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, obj.Body, 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(l.URLPrefix, "/"), obj.Key), nil
}
