// Package jsonfile implements the repository interfaces on top of flat JSON
// files, one file per collection.
//
// FILE FORMAT:
// Every file holds a single JSON array of objects, pretty-printed with two
// spaces, in insertion order:
//
//	[
//	  {"id": "cv37rs3pp9olc6atsptg", "title": "Demo", ...},
//	  ...
//	]
//
// READ POLICY:
// A missing, unreadable or corrupt file reads as an empty collection. The
// failure is logged but never returned, so callers cannot tell "empty" from
// "unreadable". A write after such a read replaces the bad file.
//
// WRITE POLICY:
// Writes replace the whole file: marshal, write to a temp file in the same
// directory, then rename over the target. A crash mid-write leaves either the
// old file or the new one, never a torn array.
//
// CONCURRENCY:
// Every Collection on the same path shares one RWMutex, and Update holds the
// write lock across load→mutate→save, so writers inside one process never
// lose each other's changes. Nothing coordinates SEPARATE processes: two
// servers pointed at the same data directory are last-writer-wins.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	pathLocksMu sync.Mutex
	pathLocks   = make(map[string]*sync.RWMutex)
)

// lockFor returns the process-wide lock for path.
func lockFor(path string) *sync.RWMutex {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}

	pathLocksMu.Lock()
	defer pathLocksMu.Unlock()

	l, ok := pathLocks[key]
	if !ok {
		l = &sync.RWMutex{}
		pathLocks[key] = l
	}
	return l
}

// Collection is an ordered sequence of T persisted as one JSON array file.
//
// GENERICS:
// Collection[T] is written once and instantiated per record type:
// Collection[model.User], Collection[model.Event], ... T must round-trip
// through encoding/json.
type Collection[T any] struct {
	path   string
	lock   *sync.RWMutex
	logger *slog.Logger
}

// NewCollection returns a Collection stored at path. The file and its parent
// directory are created on the first write, not here.
func NewCollection[T any](path string, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		path:   path,
		lock:   lockFor(path),
		logger: logger.With(slog.String("file", path)),
	}
}

// Load returns every record in file order. It only fails when ctx is done;
// storage problems yield an empty slice (see the package doc).
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.read(), nil
}

// Save replaces the file contents with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.write(records)
}

// Update loads the collection, passes it to fn and saves what fn returns, all
// under the path's write lock. If fn returns an error nothing is written and
// the error is returned unchanged.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	updated, err := fn(c.read())
	if err != nil {
		return err
	}

	return c.write(updated)
}

// read must be called with c.lock held.
func (c *Collection[T]) read() []T {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("collection file does not exist yet, treating as empty")
		} else {
			c.logger.Warn("reading collection file failed, treating as empty",
				slog.String("error", err.Error()),
			)
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("parsing collection file failed, treating as empty",
			slog.String("error", err.Error()),
		)
		return []T{}
	}

	// A file containing the literal `null` decodes to a nil slice.
	if records == nil {
		return []T{}
	}
	return records
}

// write must be called with c.lock held.
func (c *Collection[T]) write(records []T) error {
	// Always write an array, never `null`.
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", c.path, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file for %s: %w", c.path, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("jsonfile: writing %s: %w", c.path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("jsonfile: closing temp file for %s: %w", c.path, err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("jsonfile: replacing %s: %w", c.path, err)
	}
	success = true

	c.logger.Debug("collection saved", slog.Int("records", len(records)))
	return nil
}
