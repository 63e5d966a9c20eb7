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

// Keys persisted per client.
const (
	KeyTheme    = "theme"
	KeyUsername = "username"
)

// Store is a small string key-value store. Get reports ok=false for a
// missing key; that is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory keeps values in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// File keeps values in memory, loaded from a JSON file once and rewritten
// on every change.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: map[string]string{}}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, err
	}
	if len(b) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(b, &f.data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flush()
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

// flush writes through a temp file so a crash never leaves a truncated
// state file behind. Caller holds f.mu.
func (f *File) flush() error {
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Scoped prefixes every key so several clients can share one backend.
type Scoped struct {
	base   Store
	prefix string
}

func Scope(base Store, clientID string) *Scoped {
	return &Scoped{base: base, prefix: "client:" + clientID + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.base.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.base.Delete(ctx, s.prefix+key)
}
