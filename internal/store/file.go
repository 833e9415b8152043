package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileBackend = "file"

// File persists a profile's keys as one JSON object on disk, rewriting the whole file
// on every change. Suited to the handful of keys a profile holds.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a File store at path. The file and its directory are created lazily.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file path where values are stored.
func (f *File) Path() string {
	return f.path
}

// Get returns the value for key.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, &Error{Backend: fileBackend, Op: "get", Key: key, Err: err}
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return &Error{Backend: fileBackend, Op: "set", Key: key, Err: err}
	}
	values[key] = value
	if err := f.save(values); err != nil {
		return &Error{Backend: fileBackend, Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes key. A missing file or key is not an error.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return &Error{Backend: fileBackend, Op: "delete", Key: key, Err: err}
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	if err := f.save(values); err != nil {
		return &Error{Backend: fileBackend, Op: "delete", Key: key, Err: err}
	}
	return nil
}

// load reads the file. A missing file yields an empty map.
func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing store file: %w", err)
	}
	return values, nil
}

// save writes values to a temp file and renames it over the store file.
func (f *File) save(values map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

var _ Store = (*File)(nil)
