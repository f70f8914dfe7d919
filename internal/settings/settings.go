// Package settings stores per-graph display settings keyed by storage key.
package settings

import "sync"

// Display holds the display toggles of one graph.
type Display struct {
	TimelineVisible bool
}

// DefaultDisplay applies when no settings were saved for a key.
var DefaultDisplay = Display{TimelineVisible: true}

// Reader looks up display settings. Lookups never fail: an unknown key or
// a storage error yields DefaultDisplay.
type Reader interface {
	Get(key string) Display
}

// Interface is the full settings contract used by the application.
type Interface interface {
	Reader
	// Lookup is Get with storage errors reported and a flag telling whether
	// the key was ever saved.
	Lookup(key string) (Display, bool, error)
	Set(key string, d Display) error
	Toggle(key string) (Display, error)
	Close() error
}

// Verify implementations at compile time.
var (
	_ Interface = (*Store)(nil)
	_ Interface = (*Memory)(nil)
)

// Memory is an in-memory settings store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]Display
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Display)}
}

func (m *Memory) Get(key string) Display {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.data[key]; ok {
		return d
	}
	return DefaultDisplay
}

func (m *Memory) Lookup(key string) (Display, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.data[key]; ok {
		return d, true, nil
	}
	return DefaultDisplay, false, nil
}

func (m *Memory) Set(key string, d Display) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = d
	return nil
}

func (m *Memory) Toggle(key string) (Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		d = DefaultDisplay
	}
	d.TimelineVisible = !d.TimelineVisible
	m.data[key] = d
	return d, nil
}

func (m *Memory) Close() error { return nil }
