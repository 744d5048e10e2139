package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/skybi/posctl/internal/storage"
)

// Driver represents the storage driver persisting all keys into a single JSON document on disk
type Driver struct {
	path string

	mtx    sync.Mutex
	values map[storage.Key]string
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new file storage driver using the given path.
// Use Initialize to load the existing document.
func New(path string) *Driver {
	return &Driver{
		path: path,
	}
}

// Initialize loads the document if it exists
func (driver *Driver) Initialize(_ context.Context) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()

	driver.values = make(map[storage.Key]string)
	raw, err := os.ReadFile(driver.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &driver.values)
}

// Get retrieves the value of a key
func (driver *Driver) Get(_ context.Context, key storage.Key) (string, bool, error) {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if driver.values == nil {
		return "", false, storage.ErrNotInitialized
	}
	val, ok := driver.values[key]
	return val, ok, nil
}

// Set stores all given key-value pairs and rewrites the document
func (driver *Driver) Set(_ context.Context, values map[storage.Key]string) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if driver.values == nil {
		return storage.ErrNotInitialized
	}

	next := driver.copyValues()
	for key, val := range values {
		next[key] = val
	}
	return driver.commit(next)
}

// Remove removes all given keys and rewrites the document
func (driver *Driver) Remove(_ context.Context, keys ...storage.Key) error {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	if driver.values == nil {
		return storage.ErrNotInitialized
	}

	next := driver.copyValues()
	for _, key := range keys {
		delete(next, key)
	}
	return driver.commit(next)
}

// Close discards the in-memory copy of the document
func (driver *Driver) Close() {
	driver.mtx.Lock()
	defer driver.mtx.Unlock()
	driver.values = nil
}

func (driver *Driver) copyValues() map[storage.Key]string {
	cpy := make(map[storage.Key]string, len(driver.values))
	for key, val := range driver.values {
		cpy[key] = val
	}
	return cpy
}

// commit writes the document to a temporary file and renames it over the old one, so readers never see a partial
// document. The in-memory copy is only replaced once the rename succeeded.
func (driver *Driver) commit(values map[storage.Key]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}

	dir := filepath.Dir(driver.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".posctl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), driver.path); err != nil {
		return err
	}

	driver.values = values
	return nil
}
