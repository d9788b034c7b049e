// Sorry, workaround to import cycles.
package state_new

import (
	"context"
	"image"
	"testing"

	"github.com/temoto/alive/v2"
	"github.com/temoto/appanel/hardware/panel"
	"github.com/temoto/appanel/hardware/touch"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/state"
	"github.com/temoto/appanel/internal/tele"
	"github.com/temoto/appanel/log2"
)

func NewContext(log *log2.Log, teler tele.Teler) (context.Context, *state.Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}

	g := &state.Global{
		Alive: alive.NewAlive(),
		Log:   log,
		Tele:  teler,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, state.ContextKey, g)

	return ctx, g
}

// NewTestContext presets mock hardware and shell so tests never touch
// the host system.
func NewTestContext(t testing.TB, confString string) (context.Context, *state.Global) {
	fs := state.NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	log := log2.NewTest(t, log2.LDebug)
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele.NewStub())

	config := state.MustReadConfig(log, fs, "test-inline")
	g.Hardware.Panel = panel.NewMock(image.Point{X: config.Hardware.Panel.Width, Y: config.Hardware.Panel.Height})
	g.Hardware.Touch = touch.NewMock()
	g.Shell = shell.NewMock()
	g.MustInit(ctx, config)

	return ctx, g
}
