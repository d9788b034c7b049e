// Package ui owns the screen state machine, touch handling and the
// single-threaded render loop.
package ui

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/state"
	"github.com/temoto/appanel/internal/vpn"
	"github.com/temoto/appanel/log2"
)

type UI struct {
	g    *state.Global
	log  *log2.Log
	rend *Renderer
	in   *Input

	screen uint32 // atomic Screen, readable from dev console

	buttons     map[Screen][]*Button
	visibleRows int

	infoPage  int
	vpnScroll int

	lastAccepted time.Time
	lastPeriodic time.Time
	last         *Snapshot
	stopping     bool

	now   func() time.Time
	sleep func(time.Duration)
}

func NewUI(ctx context.Context) (*UI, error) {
	g := state.GetGlobal(ctx)
	ui := &UI{
		g:           g,
		log:         g.Log,
		visibleRows: g.Config.UI.VisibleVpnRows,
		now:         time.Now,
		sleep:       time.Sleep,
	}

	p, err := g.Panel()
	if err != nil {
		return nil, errors.Annotate(err, "ui init")
	}
	ui.rend = NewRenderer(g.Log, p)

	pt, err := g.Touch()
	if err != nil {
		// degraded mode: panel still shows status
		g.Error(err, "touch disabled")
		pt = nil
	}
	ui.in = NewInput(g.Log, pt, p.Size())
	ui.layout(p.Size())
	ui.setScreen(ScreenMain)
	return ui, nil
}

func (ui *UI) Screen() Screen     { return Screen(atomic.LoadUint32(&ui.screen)) }
func (ui *UI) setScreen(s Screen) { atomic.StoreUint32(&ui.screen, uint32(s)) }

// Loop runs until Alive stop or a reboot/shutdown action.
func (ui *UI) Loop(ctx context.Context) {
	ui.rend.Message("Initializing...")
	ui.refresh(ctx)
	for ui.g.Alive.IsRunning() && !ui.stopping {
		action := ui.step(ctx)

		if ui.now().Sub(ui.lastPeriodic) >= ui.g.Config.UI.Periodic {
			ui.refresh(ctx)
		}

		snap := ui.buildSnapshot(ctx)
		// any accepted press repaints: the action may have painted a
		// progress or error frame that no snapshot field reflects
		if action != ActionNone || snap.Changed(ui.last, ui.g.Config.UI.TempThreshold) {
			ui.rend.Draw(snap, ui.g.VPN.Profiles())
			ui.publish(snap)
		}
		ui.last = snap

		ui.sleep(ui.g.Config.UI.LoopSleep)
	}
}

// step polls the pointer and executes at most one button action.
func (ui *UI) step(ctx context.Context) Action {
	p, ok := ui.in.Poll()
	if !ok {
		return ActionNone
	}
	now := ui.now()
	if !ui.lastAccepted.IsZero() && now.Sub(ui.lastAccepted) < ui.g.Config.UI.Cooldown {
		ui.log.Debugf("ui: press (%d,%d) within cooldown", p.X, p.Y)
		return ActionNone
	}
	before := ui.Screen()
	b := ui.hit(before, p)
	if b == nil {
		return ActionNone
	}
	ui.lastAccepted = now
	ui.log.Debugf("ui: press (%d,%d) screen=%s button=%s", p.X, p.Y, before.String(), b.Name)
	b.Do(ctx)
	if after := ui.Screen(); after != before {
		ui.in.Ignore(ui.g.Config.UI.Ignore)
		return ActionMenuChange
	}
	return ActionNormalPress
}

// refresh re-probes the slow status sources regardless of touch input.
func (ui *UI) refresh(ctx context.Context) {
	ui.lastPeriodic = ui.now()
	ui.g.Net.RefreshNetwork(ctx)
	ui.g.Net.RefreshHotspot(ctx)
	ui.g.VPN.Refresh(ctx)
}

func (ui *UI) buildSnapshot(ctx context.Context) *Snapshot {
	g := ui.g
	snap := &Snapshot{
		Screen:  ui.Screen(),
		Net:     g.Net.Network(),
		Hotspot: g.Net.Hotspot(),
		VPN:     g.VPN.Status(),
	}
	if a := g.VPN.Active(); a != nil {
		snap.VPNName = a.Name
	}
	switch snap.Screen {
	case ScreenMain:
		if snap.Net != network.StatusDisconnected {
			snap.UplinkSSID = g.Net.UplinkSSID(ctx)
			snap.UplinkIP = g.Net.InterfaceIP(ctx, g.Config.Net.UplinkInterface)
		}
		snap.APSSID = g.Status.APSSID(ctx)
		snap.APClients = g.Status.APClients(ctx)
	case ScreenInfo:
		snap.InfoPage = ui.infoPage
		if ui.infoPage == 0 {
			snap.APSSID = g.Status.APSSID(ctx)
		} else {
			snap.CPUTemp = g.Status.CPUTemp(ctx)
			snap.CPUUsage = g.Status.CPUUsage(ctx)
			snap.MemUsage = g.Status.MemUsage(ctx)
			snap.Uptime = g.Status.Uptime(ctx)
			snap.PublicIP = g.Status.PublicIP(ctx)
			snap.Geo = g.Status.Geo(ctx)
		}
	case ScreenVpnMenu:
		snap.VpnScroll = ui.vpnScroll
	}
	return snap
}

func (ui *UI) publish(snap *Snapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		ui.log.Errorf("ui: snapshot marshal: %v", err)
		return
	}
	ui.g.Tele.State(b)
}

// button actions

func (ui *UI) goTo(s Screen) func(context.Context) {
	return func(context.Context) {
		if s == ScreenVpnMenu {
			ui.vpnScroll = 0
		}
		if s == ScreenInfo {
			ui.infoPage = 0
		}
		ui.setScreen(s)
	}
}

func (ui *UI) doToggleNetwork(ctx context.Context) {
	if err := ui.g.Net.ToggleNetwork(ctx, ui.rend.Message); err != nil {
		ui.g.Error(err)
		ui.rend.Message("WiFi toggle failed")
	}
}

func (ui *UI) doToggleHotspot(ctx context.Context) {
	if err := ui.g.Net.ToggleHotspot(ctx, ui.rend.Message); err != nil {
		ui.g.Error(err)
		ui.rend.Message("Hotspot toggle failed")
	}
}

func (ui *UI) doInfoPage(delta int) func(context.Context) {
	return func(context.Context) {
		p := ui.infoPage + delta
		if p < 0 {
			p = 0
		}
		if p > InfoPageCount-1 {
			p = InfoPageCount - 1
		}
		ui.infoPage = p
	}
}

func (ui *UI) doVpnScroll(delta int) func(context.Context) {
	return func(context.Context) {
		max := len(ui.g.VPN.Profiles()) - ui.visibleRows
		if max < 0 {
			max = 0
		}
		s := ui.vpnScroll + delta
		if s < 0 {
			s = 0
		}
		if s > max {
			s = max
		}
		ui.vpnScroll = s
	}
}

func (ui *UI) profileAt(row int) *vpn.Profile {
	ps := ui.g.VPN.Profiles()
	i := ui.vpnScroll + row
	if i < 0 || i >= len(ps) {
		return nil
	}
	return &ps[i]
}

func (ui *UI) vpnOn() bool { return ui.g.VPN.Status() == vpn.StatusOn }

func (ui *UI) doVpnConnect(row int) func(context.Context) {
	return func(ctx context.Context) {
		p := ui.profileAt(row)
		if p == nil {
			return
		}
		if err := ui.g.VPN.Connect(ctx, *p, ui.rend.Message); err != nil {
			ui.g.Error(err)
		}
	}
}

func (ui *UI) doVpnDisconnect(ctx context.Context) {
	if err := ui.g.VPN.Disconnect(ctx, ui.rend.Message); err != nil {
		ui.g.Error(err)
	}
}

// doReboot and doShutdown end the loop: the process does not outlive
// the host command.
// finalFrameHold keeps the farewell frame on the glass before the
// power drops; e-paper retains it after that.
const finalFrameHold = 5 * time.Second

func (ui *UI) doReboot(ctx context.Context) {
	ui.rend.Message("Rebooting...")
	ui.sleep(finalFrameHold)
	ui.stopping = true
	if _, err := ui.g.Shell.Run(ctx, "sudo reboot"); err != nil {
		ui.g.Error(err)
	}
	ui.g.Alive.Stop()
}

func (ui *UI) doShutdown(ctx context.Context) {
	ui.rend.Message("Shutting down...")
	ui.sleep(finalFrameHold)
	ui.stopping = true
	if _, err := ui.g.Shell.Run(ctx, "sudo shutdown -h now"); err != nil {
		ui.g.Error(err)
	}
	ui.g.Alive.Stop()
}

// XXX_testClock injects time in tests.
func (ui *UI) XXX_testClock(now func() time.Time, sleep func(time.Duration)) {
	ui.now = now
	ui.sleep = sleep
	ui.in.now = now
}
