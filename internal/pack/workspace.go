package pack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is the scratch directory owned by one pack build. It is removed
// exactly once, by whoever holds it last.
type Workspace struct {
	dir string

	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under base (the OS temp dir when
// base is empty).
func NewWorkspace(base, id string) (*Workspace, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "tenancypack-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// Path returns the location of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Release deletes the workspace and everything in it.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.err = fmt.Errorf("remove workspace %s: %w", w.dir, err)
		}
	})
	return w.err
}
