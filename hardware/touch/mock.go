package touch

import "sync"

// Mock queues samples for tests and counts Scan calls, so tests can
// assert the pipeline did not poll during an ignore window.
type Mock struct {
	mu      sync.Mutex
	queue   []Sample
	scans   int
	initErr error
}

var _ Pointer = new(Mock)

func NewMock() *Mock { return &Mock{} }

func (m *Mock) SetInitError(err error) { m.initErr = err }

func (m *Mock) Init() error { return m.initErr }

func (m *Mock) Push(s Sample) {
	m.mu.Lock()
	m.queue = append(m.queue, s)
	m.mu.Unlock()
}

func (m *Mock) Scan() (Sample, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if len(m.queue) == 0 {
		return Sample{}, false, nil
	}
	s := m.queue[0]
	m.queue = m.queue[1:]
	return s, true, nil
}

func (m *Mock) ScanCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scans
}

func (m *Mock) Close() error { return nil }
