package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Files stores each artifact as <dir>/<name>.json.
type Files struct {
	Dir string
}

// DefaultDataDir returns the default data directory: ~/.kaizen
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".kaizen"), nil
}

// OpenFiles creates dir if needed and returns a file backend rooted there.
func OpenFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Files{Dir: dir}, nil
}

// Path returns the file path of an artifact.
func (f *Files) Path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

// Read implements Backend.
func (f *Files) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Write implements Backend.
func (f *Files) Write(name string, data []byte, mode Mode) error {
	path := f.Path(name)
	if mode != Atomic {
		return os.WriteFile(path, data, 0o644)
	}

	// The temp file must live in the target directory for the rename to
	// stay on one filesystem.
	tmp, err := os.CreateTemp(f.Dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp for %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp for %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
