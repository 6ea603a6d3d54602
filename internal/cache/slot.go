// Package cache keeps the last downloaded document in a single file. The file
// is valid for a run only when its size equals the length the server reports
// for the document; any other size is a miss.
package cache

import (
	"io"
	"os"
	"path/filepath"

	"github.com/edward-yakop/go-pubdoc/internal/misc"
)

var log = misc.NewLogger("Cache")

// IOError wraps a filesystem failure on the slot file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return e.Op + " cache [" + e.Path + "] failed: " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Cause() error { return e.Err }

// Slot is one length-addressed cache file. A Slot must not be shared between
// concurrent runs.
type Slot struct {
	path string
}

func NewSlot(path string) *Slot {
	return &Slot{
		path: path,
	}
}

func (s *Slot) Path() string {
	return s.path
}

// ReadIfValid opens the slot, creating it and its directory when absent, and
// returns its contents when the stored size equals expected. ok is false on a
// miss.
func (s *Slot) ReadIfValid(expected uint64) (data []byte, ok bool, err error) {
	if err = s.ensureDir(); err != nil {
		return nil, false, err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil {
		return nil, false, &IOError{Op: "stat", Path: s.path, Err: err}
	}

	size := uint64(info.Size())
	if size != expected {
		log.Debugf("Miss %s: stored %d bytes, expected %d.", s.path, size, expected)
		return nil, false, nil
	}

	data = make([]byte, size)
	if _, err = io.ReadFull(f, data); err != nil {
		return nil, false, &IOError{Op: "read", Path: s.path, Err: err}
	}

	log.Debugf("Hit %s: %d bytes.", s.path, len(data))
	return data, true, nil
}

// Write replaces the slot contents with data. The file is truncated before
// writing; a failure part way leaves a file whose length will not match the
// next expected length.
func (s *Slot) Write(data []byte) (err error) {
	if err = s.ensureDir(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: s.path, Err: cerr}
		}
	}()

	if _, err = f.Write(data); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	if err = f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: s.path, Err: err}
	}

	log.Debugf("Stored %d bytes in %s.", len(data), s.path)
	return nil
}

func (s *Slot) ensureDir() error {
	dir := filepath.Dir(s.path)
	if misc.IsFileExists(dir) {
		return nil
	}
	if err := misc.EnsureDir(dir); err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	return nil
}
