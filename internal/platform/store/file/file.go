// Package file provides a flat-file JSON document backend.
// The whole document is read into memory, mutated by the caller, and written
// back atomically; this is the durable fallback when Postgres is not configured
package file

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DB is a single JSON document on disk guarded by a mutex.
// Callers own the document schema; DB only moves bytes
type DB struct {
	path string
	mu   sync.Mutex
}

// Open prepares a DB at path, creating the parent directory if needed.
// The file itself is created lazily on first Save
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("file: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	return &DB{path: path}, nil
}

// Path returns the backing file path
func (d *DB) Path() string { return d.path }

// Load unmarshals the document into v. A missing file leaves v untouched
// so first-run callers start from their zero-value document
func (d *DB) Load(v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked(v)
}

// Save marshals v and writes it back via a temp file + rename
func (d *DB) Save(v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(v)
}

// Update runs read-modify-write as one critical section: load into v,
// apply fn, persist. fn returning an error aborts without writing
func (d *DB) Update(v any, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.loadLocked(v); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return d.saveLocked(v)
}

// View runs a read-only load of the document into v
func (d *DB) View(v any) error { return d.Load(v) }

// Close is a no-op; it exists so the store facade can treat backends uniformly
func (d *DB) Close() error { return nil }

func (d *DB) loadLocked(v any) error {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (d *DB) saveLocked(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o640); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}
