package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileStore keeps the token pair in a JSON file guarded by an advisory lock,
// so concurrent CLI invocations do not interleave writes.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: flock.New(path + ".lock")}
}

// Path is the session file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (TokenPair, error) {
	var p TokenPair
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return p, err
	}
	if err := f.lock.RLock(); err != nil {
		return p, fmt.Errorf("lock session: %w", err)
	}
	defer f.lock.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return TokenPair{}, fmt.Errorf("corrupt session file %s: %w", f.path, err)
	}
	return p, nil
}

func (f *FileStore) Save(p TokenPair) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	defer f.lock.Unlock()

	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	defer f.lock.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
