package lookup

import (
	"context"
	"sync"
)

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemory creates a Memory backend holding a copy of codes, keyed by kind
// then code.
func NewMemory(codes map[string]map[string]string) *Memory {
	m := &Memory{values: make(map[string]map[string]string, len(codes))}
	for kind, byCode := range codes {
		cp := make(map[string]string, len(byCode))
		for code, value := range byCode {
			cp[code] = value
		}
		m.values[kind] = cp
	}
	return m
}

// Value returns the value of code within kind.
func (m *Memory) Value(_ context.Context, kind, code string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[kind][code]
	return v, ok, nil
}

// IsValid reports whether any kind holds code.
func (m *Memory) IsValid(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, byCode := range m.values {
		if _, ok := byCode[code]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Code scans the kind's codes; when several codes share the value the
// lexically smallest wins.
func (m *Memory) Code(_ context.Context, kind, value string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		found string
		ok    bool
	)
	for code, v := range m.values[kind] {
		if v == value && (!ok || code < found) {
			found, ok = code, true
		}
	}
	return found, ok, nil
}

// Put stores entries, replacing existing (kind, code) values.
func (m *Memory) Put(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if m.values[e.Kind] == nil {
			m.values[e.Kind] = make(map[string]string)
		}
		m.values[e.Kind][e.Code] = e.Value
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
