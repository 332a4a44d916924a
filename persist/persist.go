// Package persist keeps form data across sessions. A persisted model is
// restored from a Storage when attached and saved again after every change.
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/reoring/formbind"
)

// ErrBadKey is returned for keys that are empty or contain path separators.
var ErrBadKey = errors.New("persist: invalid storage key")

// Storage loads and saves encoded form data by key.
type Storage interface {
	// Load returns the stored bytes; ok is false when nothing is stored.
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
}

// MemoryStorage is a Storage living in process memory. It is safe for
// concurrent use.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[key]
	return append([]byte(nil), b...), ok, nil
}

func (s *MemoryStorage) Save(key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), data...)
	return nil
}

// FileStorage stores each key as <Dir>/<key>.json. Saves replace the file
// atomically.
type FileStorage struct {
	Dir string
}

func (s FileStorage) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, key+".json"), nil
}

func (s FileStorage) Load(key string) ([]byte, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("persist: read %s: %w", p, err)
	}
	return b, true, nil
}

func (s FileStorage) Save(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("persist: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}

// Restore replaces the model data with the stored value, if any. Controllers
// bound to the root path are refreshed like for any SetData.
func Restore(m *formbind.Model, s Storage, key string) (bool, error) {
	b, ok, err := s.Load(key)
	if err != nil || !ok {
		return false, err
	}
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return false, fmt.Errorf("persist: decode %q: %w", key, err)
	}
	m.SetData("", data)
	return true, nil
}

// Save encodes the current model data under key.
func Save(m *formbind.Model, s Storage, key string) error {
	b, err := json.Marshal(m.AllData())
	if err != nil {
		return fmt.Errorf("persist: encode %q: %w", key, err)
	}
	return s.Save(key, b)
}

// Attach restores m from s and then saves it after every change. Save
// failures are logged with the model's logger; the returned func stops
// saving.
func Attach(m *formbind.Model, s Storage, key string) (detach func(), err error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if _, err := Restore(m, s, key); err != nil {
		return nil, err
	}
	logger := m.Logger()
	return m.Watch(func(ev formbind.ChangeEvent) {
		if err := Save(m, s, key); err != nil {
			logger.Error().Err(err).Str("key", key).Str("path", ev.Path).Msg("form data not persisted")
		}
	}), nil
}
