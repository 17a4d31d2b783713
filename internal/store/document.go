// Package store keeps the site's content in small JSON documents under the
// data directory.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"athletics/internal/apperr"
	"athletics/internal/config"
)

// Document is one JSON file holding a value of type T. Reads and writes go
// through a mutex, so a read-modify-write made with Update never interleaves
// with another one from this process. Every write replaces the file
// atomically.
type Document[T any] struct {
	path string
	mu   sync.Mutex
	// empty returns the value used when the file does not exist yet.
	empty func() T
}

// NewDocument returns a Document stored at path.
func NewDocument[T any](path string, empty func() T) *Document[T] {
	return &Document[T]{path: path, empty: empty}
}

// Path returns the file location.
func (d *Document[T]) Path() string {
	return d.path
}

// Load reads the current value.
func (d *Document[T]) Load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// Update loads the value, applies fn and writes the result. If fn returns an
// error nothing is written and that error is returned unchanged.
func (d *Document[T]) Update(fn func(v *T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.load()
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return d.save(v)
}

func (d *Document[T]) load() (T, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d.empty(), nil
		}
		return d.empty(), apperr.FromErr(apperr.ErrInternal, "failed to read "+d.name(), err, apperr.Details{"path": d.path})
	}

	v := d.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		return d.empty(), apperr.FromErr(apperr.ErrInternal, "failed to decode "+d.name(), err, apperr.Details{"path": d.path})
	}
	return v, nil
}

func (d *Document[T]) save(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperr.FromErr(apperr.ErrInternal, "failed to encode "+d.name(), err, nil)
	}
	if err := config.WriteFileAtomic(d.path, data, 0o644); err != nil {
		return apperr.FromErr(apperr.ErrInternal, "failed to write "+d.name(), err, apperr.Details{"path": d.path})
	}
	return nil
}

func (d *Document[T]) name() string {
	return filepath.Base(d.path)
}
