package ui

import (
	"context"
	"image"
)

type Screen uint8

const (
	ScreenMain Screen = iota
	ScreenSystemMenu
	ScreenInfo
	ScreenVpnMenu
)

func (s Screen) String() string {
	switch s {
	case ScreenSystemMenu:
		return "system-menu"
	case ScreenInfo:
		return "info"
	case ScreenVpnMenu:
		return "vpn-menu"
	}
	return "main"
}

const InfoPageCount = 2

// Button binds a touch region to an action. Regions of one screen must
// not overlap; declaration order breaks ties anyway.
type Button struct {
	Name string
	Rect image.Rectangle
	// Visible buttons that currently don't apply return false.
	Enabled func() bool
	Do      func(ctx context.Context)
}

func (b *Button) enabled() bool { return b.Enabled == nil || b.Enabled() }

const (
	barH  = 26 // bottom button bar
	gapW  = 2
	rowH  = 20 // vpn profile rows
	sideW = 34 // side arrows on info/vpn screens
)

// layout computes per-screen button regions once from panel size.
func (ui *UI) layout(size image.Point) {
	w, h := size.X, size.Y
	barY := h - barH
	third := w / 3

	bar3 := func(i int) image.Rectangle {
		x0 := i * third
		x1 := x0 + third - gapW
		if i == 2 {
			x1 = w
		}
		return image.Rect(x0, barY, x1, h)
	}

	ui.buttons = map[Screen][]*Button{
		ScreenMain: {
			// status line tap targets: left half toggles uplink,
			// right half toggles hotspot
			{Name: "net-toggle", Rect: image.Rect(0, 0, w/2, barY), Do: ui.doToggleNetwork},
			{Name: "ap-toggle", Rect: image.Rect(w/2, 0, w, barY), Do: ui.doToggleHotspot},
			{Name: "system-menu", Rect: bar3(0), Do: ui.goTo(ScreenSystemMenu)},
			{Name: "info", Rect: bar3(1), Do: ui.goTo(ScreenInfo)},
			{Name: "vpn-menu", Rect: bar3(2), Do: ui.goTo(ScreenVpnMenu)},
		},
		ScreenSystemMenu: {
			{Name: "reboot", Rect: image.Rect(0, 0, w/2, barY), Do: ui.doReboot},
			{Name: "shutdown", Rect: image.Rect(w/2, 0, w, barY), Do: ui.doShutdown},
			{Name: "back", Rect: image.Rect(0, barY, w, h), Do: ui.goTo(ScreenMain)},
		},
		ScreenInfo: {
			{Name: "prev", Rect: image.Rect(0, 0, sideW, barY), Do: ui.doInfoPage(-1)},
			{Name: "next", Rect: image.Rect(w-sideW, 0, w, barY), Do: ui.doInfoPage(+1)},
			{Name: "back", Rect: image.Rect(0, barY, w, h), Do: ui.goTo(ScreenMain)},
		},
		ScreenVpnMenu: ui.vpnButtons(w, h, barY),
	}
}

func (ui *UI) vpnButtons(w, h, barY int) []*Button {
	bs := []*Button{
		{Name: "scroll-up", Rect: image.Rect(w-sideW, 0, w, barY/2), Do: ui.doVpnScroll(-1)},
		{Name: "scroll-down", Rect: image.Rect(w-sideW, barY/2, w, barY), Do: ui.doVpnScroll(+1)},
	}
	for i := 0; i < ui.visibleRows; i++ {
		row := i
		bs = append(bs, &Button{
			Name:    "row",
			Rect:    image.Rect(0, row*rowH, w-sideW, (row+1)*rowH),
			Enabled: func() bool { return ui.profileAt(row) != nil },
			Do:      ui.doVpnConnect(row),
		})
	}
	half := w / 2
	bs = append(bs,
		&Button{
			Name:    "disconnect",
			Rect:    image.Rect(0, barY, half, h),
			Enabled: ui.vpnOn,
			Do:      ui.doVpnDisconnect,
		},
		&Button{Name: "back", Rect: image.Rect(half, barY, w, h), Do: ui.goTo(ScreenMain)},
	)
	return bs
}

// hit returns the first enabled button of the screen containing p.
func (ui *UI) hit(s Screen, p image.Point) *Button {
	for _, b := range ui.buttons[s] {
		if p.In(b.Rect) && b.enabled() {
			return b
		}
	}
	return nil
}
