package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/julianstephens/tendwell/internal/errors"
)

// fileFormat is the on-disk layout of a JSONStore.
type fileFormat struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// JSONStore keeps every key in a single JSON document. Each write rewrites
// the file through a temporary file and a rename, so a crash leaves either the
// old or the new document.
type JSONStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'tendwell init' first")
		}
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrCorrupt, s.path, err)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	s.values = doc.Values
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(fileFormat{Version: 1, Values: s.values}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (s *JSONStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

func (s *JSONStore) SetMany(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		return fmt.Errorf("storage not loaded")
	}

	previous := make(map[string]*string, len(values))
	for key, value := range values {
		if old, ok := s.values[key]; ok {
			previous[key] = &old
		} else {
			previous[key] = nil
		}
		s.values[key] = value
	}

	if err := s.save(); err != nil {
		for key, old := range previous {
			if old == nil {
				delete(s.values, key)
			} else {
				s.values[key] = *old
			}
		}
		return err
	}
	return nil
}

func (s *JSONStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		return fmt.Errorf("storage not loaded")
	}
	old, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.save(); err != nil {
		s.values[key] = old
		return err
	}
	return nil
}

func (s *JSONStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
