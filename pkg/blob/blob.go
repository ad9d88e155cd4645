// Package blob archives rendered exports in object storage.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Store writes objects by key.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *Memory) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return fmt.Errorf("blob %s already exists", key)
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

// Get returns a stored object and its content type.
func (m *Memory) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return bytes.Clone(data), m.types[key], ok
}
