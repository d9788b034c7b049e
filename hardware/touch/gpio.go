package touch

import (
	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
)

// IntGate wraps a Pointer behind a touch-controller interrupt line.
// The inner source is scanned only while the INT line reads active
// (low on GT1151-style controllers); otherwise pending samples are
// dropped so a stale press is not delivered later.
type IntGate struct {
	chipPath string
	line     uint32
	inner    Pointer

	chip  gpio.Chiper
	lines gpio.Lineser
}

var _ Pointer = new(IntGate)

func NewIntGate(chipPath string, line uint32, inner Pointer) *IntGate {
	return &IntGate{chipPath: chipPath, line: line, inner: inner}
}

func (g *IntGate) Init() error {
	chip, err := gpio.Open(g.chipPath, "appanel-touch")
	if err != nil {
		return errors.Annotatef(err, "touch gpio chip=%s", g.chipPath)
	}
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_INPUT, "appanel-touch", g.line)
	if err != nil {
		chip.Close()
		return errors.Annotatef(err, "touch gpio line=%d", g.line)
	}
	g.chip = chip
	g.lines = lines
	return g.inner.Init()
}

func (g *IntGate) Scan() (Sample, bool, error) {
	data, err := g.lines.Read()
	if err != nil {
		return Sample{}, false, errors.Annotate(err, "touch gpio read")
	}
	if data.Values[0] != 0 { // INT idles high
		// drain so a sample taken during the gate does not linger
		_, _, _ = g.inner.Scan()
		return Sample{}, false, nil
	}
	return g.inner.Scan()
}

func (g *IntGate) Close() error {
	if g.lines != nil {
		_ = g.lines.Close()
	}
	if g.chip != nil {
		_ = g.chip.Close()
	}
	return g.inner.Close()
}
