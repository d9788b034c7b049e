package touch

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/juju/errors"
	inputevent "github.com/temoto/inputevent-go"
)

// linux input-event-codes; inputevent-go v1 exports none
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	absX     = 0x00
	absY     = 0x01
	btnTouch = 0x14a
)

const DevInputTag = "dev-input-touch"

// DevInput reads a touchscreen from /dev/input/eventN.
// The kernel stream is blocking so a goroutine assembles EV_ABS pairs
// and keeps only the latest complete pressed sample for Scan.
type DevInput struct {
	device string
	f      io.ReadCloser
	ch     chan Sample
	closed uint32
}

var _ Pointer = new(DevInput)

func NewDevInput(device string) *DevInput {
	return &DevInput{device: device}
}

func (d *DevInput) String() string { return DevInputTag }

func (d *DevInput) Init() error {
	f, err := os.Open(d.device)
	if err != nil {
		return errors.Annotatef(err, "touch open device=%s", d.device)
	}
	d.f = f
	d.ch = make(chan Sample, 1)
	go d.read()
	return nil
}

func (d *DevInput) Scan() (Sample, bool, error) {
	select {
	case s := <-d.ch:
		return s, true, nil
	default:
		return Sample{}, false, nil
	}
}

func (d *DevInput) Close() error {
	atomic.StoreUint32(&d.closed, 1)
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

func (d *DevInput) read() {
	var cur Sample
	pressed := false
	haveX, haveY := false, false
	for atomic.LoadUint32(&d.closed) == 0 {
		ie, err := inputevent.ReadOne(d.f)
		if err != nil {
			return
		}
		switch ie.Type {
		case evKey:
			if ie.Code == btnTouch {
				pressed = ie.Value != int32(inputevent.KeyStateUp)
			}
		case evAbs:
			switch ie.Code {
			case absX:
				cur.X = int(ie.Value)
				haveX = true
			case absY:
				cur.Y = int(ie.Value)
				haveY = true
			}
		case evSyn:
			if pressed && haveX && haveY {
				// keep only the newest sample
				select {
				case <-d.ch:
				default:
				}
				d.ch <- cur
			}
		}
	}
}
