package timeline

// MockRenderer is a test double recording every renderer call.
type MockRenderer struct {
	startCalls []float64
	seekCalls  []float64
	pauseCalls int
	resetCalls int
}

// NewMockRenderer creates a recording renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

func (m *MockRenderer) TimelineStart(speed float64) {
	m.startCalls = append(m.startCalls, speed)
}

func (m *MockRenderer) TimelinePause() { m.pauseCalls++ }

func (m *MockRenderer) TimelineSeek(position float64) {
	m.seekCalls = append(m.seekCalls, position)
}

func (m *MockRenderer) TimelineReset() { m.resetCalls++ }

// StartCalls returns the speeds passed to TimelineStart.
func (m *MockRenderer) StartCalls() []float64 { return m.startCalls }

// SeekCalls returns the positions passed to TimelineSeek.
func (m *MockRenderer) SeekCalls() []float64 { return m.seekCalls }

// PauseCalls returns how many times TimelinePause was called.
func (m *MockRenderer) PauseCalls() int { return m.pauseCalls }

// ResetCalls returns how many times TimelineReset was called.
func (m *MockRenderer) ResetCalls() int { return m.resetCalls }
