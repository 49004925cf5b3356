package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Storer is the read/write contract for a content collection.
type Storer[T ValidatingSpec] interface {
	Save(string, T) error
	Get(string) T
	GetAll() map[string]T
}

// FileStore keeps one collection of JSON assets (rooms, NPCs) from a
// directory, validated and cached at load time.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[string]T

	mu sync.RWMutex
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore[T]) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = map[string]T{}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		asset, err := s.readAsset(path)
		if err != nil {
			return err
		}
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}
		if _, ok := s.records[asset.ID]; ok {
			return fmt.Errorf("duplicate asset id %q in %s", asset.ID, filepath.Base(path))
		}

		s.records[asset.ID] = asset.Spec
		return nil
	})
}

func (s *FileStore[T]) readAsset(path string) (*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	asset := &Asset[T]{}
	if err := json.Unmarshal(data, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", path, err)
	}
	return asset, nil
}

// Save updates the cached record and writes it back to disk atomically.
func (s *FileStore[T]) Save(id string, spec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = spec

	asset := &Asset[T]{
		Version: 1,
		ID:      id,
		Spec:    spec,
	}
	data, err := json.MarshalIndent(asset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling asset %q: %w", id, err)
	}

	return atomicWrite(filepath.Join(s.path, id+".json"), data, 0644)
}

// Get returns the record with the given id, or the zero value.
func (s *FileStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	if !ok {
		var zero T
		return zero
	}
	return val
}

// GetAll returns a copy of every record.
func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]T, len(s.records))
	for id, v := range s.records {
		out[id] = v
	}
	return out
}

func (s *FileStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// atomicWrite writes to a temp file then renames over the target so an
// interrupted process never leaves a truncated asset behind.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("removing temp file after failed rename", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
