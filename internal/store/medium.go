package store

import (
	"context"
	"sort"
	"sync"
)

// Medium is a string key-value store. Get reports ok=false for missing keys.
type Medium interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Batcher is implemented by media that can apply several writes atomically.
// A nil value in sets deletes the key.
type Batcher interface {
	Apply(ctx context.Context, sets map[string]*string) error
}

// Memory is an in-process medium, used by tests and the TUI preview.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}

func (m *Memory) Apply(_ context.Context, sets map[string]*string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range sets {
		if v == nil {
			delete(m.m, k)
			continue
		}
		m.m[k] = *v
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.m))
	for k := range m.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func applyAll(ctx context.Context, m Medium, sets map[string]*string) error {
	if b, ok := m.(Batcher); ok {
		return b.Apply(ctx, sets)
	}
	keys := make([]string, 0, len(sets))
	for k := range sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := sets[k]; v == nil {
			if err := m.Delete(ctx, k); err != nil {
				return err
			}
		} else if err := m.Set(ctx, k, *v); err != nil {
			return err
		}
	}
	return nil
}
