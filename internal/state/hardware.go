package state

import (
	"github.com/juju/errors"
	"github.com/temoto/appanel/hardware/panel"
	"github.com/temoto/appanel/hardware/touch"
)

// Panel opens and initializes the display once. Failure is fatal for
// the process; there is nothing to show status on without it.
func (g *Global) Panel() (panel.Panel, error) {
	var err error
	g.initPanelOnce.Do(func() {
		defer recoverFatal(g.Log) // fix sync.Once silent panic

		// may only be already set by NewTestContext
		if g.Hardware.Panel != nil {
			return
		}
		cfg := &g.Config.Hardware.Panel
		fb := panel.NewFb(cfg.FbDevice)
		if err = fb.Init(); err != nil {
			err = errors.Annotatef(err, "panel fb_device=%s", cfg.FbDevice)
			return
		}
		g.Hardware.Panel = fb
	})
	return g.Hardware.Panel, err
}

func (g *Global) MustPanel() panel.Panel {
	p, err := g.Panel()
	if err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
	return p
}

// Touch opens the pointer once. nil,nil when touch is disabled by
// config; init failure also degrades to disabled with a logged error.
func (g *Global) Touch() (touch.Pointer, error) {
	var err error
	g.initTouchOnce.Do(func() {
		defer recoverFatal(g.Log) // fix sync.Once silent panic

		// may only be already set by NewTestContext
		if g.Hardware.Touch != nil {
			return
		}
		cfg := &g.Config.Hardware.Touch
		if !cfg.Enable {
			g.Log.Infof("touch=%s disabled", touch.DevInputTag)
			return
		}
		var pt touch.Pointer = touch.NewDevInput(cfg.Device)
		if cfg.GpioChip != "" && cfg.IntLine >= 0 {
			pt = touch.NewIntGate(cfg.GpioChip, uint32(cfg.IntLine), pt)
		}
		if err = pt.Init(); err != nil {
			err = errors.Annotatef(err, "touch device=%s", cfg.Device)
			return
		}
		g.Hardware.Touch = pt
	})
	return g.Hardware.Touch, err
}
