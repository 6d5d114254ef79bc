// Package kv is the external byte sink the session saves into. The session
// core never sees the storage mechanism, only load/save/clear over opaque
// bytes; a failed or missing load degrades to fresh initialization upstream.
package kv

import "sync"

type Store interface {
	// Load returns the saved bytes, or ok=false when nothing has been saved.
	Load() (b []byte, ok bool, err error)
	Save(b []byte) error
	Clear() error
	Close() error
}

// Memory is the in-process Store used by tests.
type Memory struct {
	mu  sync.Mutex
	b   []byte
	set bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load() ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	out := make([]byte, len(m.b))
	copy(out, m.b)
	return out, true, nil
}

func (m *Memory) Save(b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.b = make([]byte, len(b))
	copy(m.b, b)
	m.set = true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.b = nil
	m.set = false
	return nil
}

func (m *Memory) Close() error { return nil }
