package ui

import (
	"image"
	"time"

	"github.com/temoto/appanel/hardware/touch"
	"github.com/temoto/appanel/log2"
)

type Action uint8

const (
	ActionNone Action = iota
	ActionNormalPress
	ActionMenuChange
)

func (a Action) String() string {
	switch a {
	case ActionNormalPress:
		return "press"
	case ActionMenuChange:
		return "menu-change"
	}
	return "none"
}

type inputState uint8

const (
	inputIdle inputState = iota
	inputIgnoring
)

// Input owns pointer polling, the post-menu-change ignore window and
// the raw-to-panel coordinate remap. Sensor axes are rotated 90°
// relative to the panel.
type Input struct {
	log     *log2.Log
	pointer touch.Pointer // nil = touch disabled
	size    image.Point

	state inputState
	until time.Time

	now func() time.Time
}

func NewInput(log *log2.Log, pointer touch.Pointer, size image.Point) *Input {
	return &Input{
		log:     log,
		pointer: pointer,
		size:    size,
		now:     time.Now,
	}
}

// Poll yields at most one remapped sample per loop cycle. While the
// ignore window is armed and unexpired the pointer is not scanned at
// all; on expiry polling resumes the same cycle.
func (in *Input) Poll() (image.Point, bool) {
	if in.pointer == nil {
		return image.Point{}, false
	}
	if in.state == inputIgnoring {
		if in.now().Before(in.until) {
			return image.Point{}, false
		}
		in.state = inputIdle
	}
	s, ok, err := in.pointer.Scan()
	if err != nil {
		in.log.Errorf("touch scan: %v", err)
		return image.Point{}, false
	}
	if !ok {
		return image.Point{}, false
	}
	return in.remap(s), true
}

// Ignore arms the window and drops in-flight samples so a stale press
// is not replayed against the freshly drawn screen.
func (in *Input) Ignore(d time.Duration) {
	in.state = inputIgnoring
	in.until = in.now().Add(d)
	in.flush()
}

func (in *Input) flush() {
	if in.pointer == nil {
		return
	}
	for i := 0; i < 16; i++ {
		if _, ok, _ := in.pointer.Scan(); !ok {
			return
		}
	}
}

func (in *Input) remap(s touch.Sample) image.Point {
	p := image.Point{X: in.size.X - 1 - s.Y, Y: s.X}
	return clamp(p, in.size)
}

func clamp(p image.Point, size image.Point) image.Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.X > size.X-1 {
		p.X = size.X - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > size.Y-1 {
		p.Y = size.Y - 1
	}
	return p
}
