package kv

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Save(_ context.Context, name string, data []byte) error {
	v := slices.Clone(data)
	if v == nil {
		v = []byte{}
	}
	m.mu.Lock()
	m.data[name] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.data, name)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Names(_ context.Context, prefix string) iter.Seq2[string, error] {
	m.mu.RLock()
	var names []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			names = append(names, k)
		}
	}
	m.mu.RUnlock()
	slices.Sort(names)

	return func(yield func(string, error) bool) {
		for _, n := range names {
			if !yield(n, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error { return nil }
