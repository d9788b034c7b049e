package panel

import (
	"image"
	"sync"
)

// Mock records drawn frames for tests. Optional update channel receives
// a copy of every frame, like the real panel would show it.
type Mock struct {
	size image.Point

	mu     sync.Mutex
	last   *Frame
	draws  int
	inited bool
	asleep bool
	upd    chan<- *Frame
}

var _ Panel = new(Mock)

func NewMock(size image.Point) *Mock { return &Mock{size: size} }

func (m *Mock) SetUpdateChan(ch chan<- *Frame) { m.upd = ch }

func (m *Mock) Init() error {
	m.mu.Lock()
	m.inited = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Size() image.Point { return m.size }

func (m *Mock) Draw(f *Frame) error {
	m.mu.Lock()
	m.last = f.Copy()
	m.draws++
	m.mu.Unlock()
	if m.upd != nil {
		m.upd <- f.Copy()
	}
	return nil
}

func (m *Mock) Clear() error {
	return m.Draw(NewFrame(m.size))
}

func (m *Mock) Sleep() error {
	m.mu.Lock()
	m.asleep = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Last() *Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Mock) DrawCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draws
}

func (m *Mock) Asleep() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.asleep
}
