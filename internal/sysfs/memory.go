package sysfs

import (
	"fmt"
	"sync"
)

// Write records one value written through a Memory writer.
type Write struct {
	Path  string
	Value string
}

// Memory is an in-memory Writer for tests. Each call records the complete
// payload as a single entry, so interleaved partial writes are impossible
// to miss in assertions.
type Memory struct {
	mu     sync.Mutex
	writes []Write
	fail   map[string]error
}

// NewMemory creates an in-memory writer.
func NewMemory() *Memory {
	return &Memory{fail: make(map[string]error)}
}

// FailWith makes subsequent writes to path return err.
func (m *Memory) FailWith(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[path] = err
}

// WriteInt implements Writer.
func (m *Memory) WriteInt(path string, value int) error {
	return m.WriteString(path, fmt.Sprintf("%d", value))
}

// WriteString implements Writer.
func (m *Memory) WriteString(path string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[path]; err != nil {
		return err
	}
	m.writes = append(m.writes, Write{Path: path, Value: value})
	return nil
}

// Writes returns a copy of all recorded writes in order.
func (m *Memory) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Write, len(m.writes))
	copy(out, m.writes)
	return out
}

// Last returns the most recent write to path, or false if none happened.
func (m *Memory) Last(path string) (Write, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.writes) - 1; i >= 0; i-- {
		if m.writes[i].Path == path {
			return m.writes[i], true
		}
	}
	return Write{}, false
}

// Reset clears all recorded writes.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}
