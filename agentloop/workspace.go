package agentloop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessDenied is returned when a path resolves outside the workspace.
var ErrAccessDenied = errors.New("access denied")

// Workspace is the sole filesystem surface available to tools. Every path a
// tool touches is resolved against the workspace root and rejected when the
// canonical result escapes it. There is no other containment mechanism.
type Workspace struct {
	root string // canonical absolute root
}

// NewWorkspace creates a Workspace rooted at dir. An empty dir means the
// process working directory.
func NewWorkspace(dir string) (*Workspace, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("workspace: cannot determine working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: root %s: %w", dir, err)
	}
	return &Workspace{root: canonical}, nil
}

// Root returns the canonical workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Resolve canonicalizes path against the workspace root and verifies the
// result is the root itself or a descendant of it. Relative paths are joined
// onto the root; `.`/`..` segments and symbolic links are resolved before the
// containment check, so a link pointing outside the tree is rejected even
// when its own path looks contained.
func (w *Workspace) Resolve(path string) (string, error) {
	p := path
	if p == "" {
		p = "."
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.root, p)
	}
	resolved, err := canonicalize(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("workspace: resolve %s: %w", path, err)
	}
	if resolved != w.root && !strings.HasPrefix(resolved, w.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the workspace %s", ErrAccessDenied, path, w.root)
	}
	return resolved, nil
}

// canonicalize resolves symlinks for p. The target itself may not exist yet
// (file creation), so the nearest existing ancestor is resolved and the
// non-existent remainder re-joined lexically.
func canonicalize(p string) (string, error) {
	var remainder []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			parts := append([]string{resolved}, remainder...)
			return filepath.Join(parts...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		remainder = append([]string{filepath.Base(cur)}, remainder...)
		cur = parent
	}
}

// Stat resolves path and returns its FileInfo.
func (w *Workspace) Stat(path string) (os.FileInfo, error) {
	resolved, err := w.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Stat(resolved)
}

// ReadFile resolves path and returns the full file content as text.
func (w *Workspace) ReadFile(path string) (string, error) {
	resolved, err := w.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile resolves path and writes content, creating missing parent
// directories inside the workspace.
func (w *Workspace) WriteFile(path string, content string) error {
	resolved, err := w.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("workspace: create parent directories for %s: %w", path, err)
	}
	return os.WriteFile(resolved, []byte(content), 0o644)
}

// ReadDir resolves path and returns its immediate children.
func (w *Workspace) ReadDir(path string) ([]os.DirEntry, error) {
	resolved, err := w.Resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(resolved)
}
