package ui

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/temoto/appanel/hardware/panel"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/sysd"
	"github.com/temoto/appanel/internal/vpn"
	"github.com/temoto/appanel/log2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Renderer fully repaints the active screen into one frame per draw.
// Black pixels on white background.
type Renderer struct {
	log   *log2.Log
	panel panel.Panel
	size  image.Point
	face  font.Face
}

func NewRenderer(log *log2.Log, p panel.Panel) *Renderer {
	return &Renderer{
		log:   log,
		panel: p,
		size:  p.Size(),
		face:  basicfont.Face7x13,
	}
}

const lineH = 15

func (r *Renderer) newFrame() *panel.Frame {
	f := panel.NewFrame(r.size)
	f.Fill(true)
	return f
}

func (r *Renderer) draw(f *panel.Frame) {
	if err := r.panel.Draw(f); err != nil {
		r.log.Errorf("panel draw: %v", err)
	}
}

// Message paints a centered text frame, used for progress and final
// confirmation before reboot/shutdown.
func (r *Renderer) Message(s string) {
	f := r.newFrame()
	x := (r.size.X - panel.TextWidth(r.face, s)) / 2
	if x < 0 {
		x = 0
	}
	f.Text(x, r.size.Y/2, r.face, s, false)
	r.draw(f)
}

func (r *Renderer) Draw(snap *Snapshot, profiles []vpn.Profile) {
	f := r.newFrame()
	switch snap.Screen {
	case ScreenSystemMenu:
		r.systemMenu(f)
	case ScreenInfo:
		r.info(f, snap)
	case ScreenVpnMenu:
		r.vpnMenu(f, snap, profiles)
	default:
		r.main(f, snap)
	}
	r.draw(f)
}

func (r *Renderer) main(f *panel.Frame, snap *Snapshot) {
	y := lineH
	f.Text(2, y, r.face, "RaspAP", false)
	y += lineH

	net := "WiFi: off"
	switch snap.Net {
	case network.StatusConnected:
		net = fmt.Sprintf("WiFi: %s %s", snap.UplinkSSID, snap.UplinkIP)
	case network.StatusAssociatedNoIP:
		net = fmt.Sprintf("WiFi: %s no IP", snap.UplinkSSID)
	}
	f.Text(2, y, r.face, net, false)
	y += lineH

	ap := "AP: off"
	switch snap.Hotspot {
	case sysd.HealthActive:
		ap = fmt.Sprintf("AP: %s (%s)", snap.APSSID, clientsText(snap.APClients))
	case sysd.HealthIndeterminate:
		ap = "AP: ?"
	}
	f.Text(2, y, r.face, ap, false)
	y += lineH

	v := "VPN: " + snap.VPN.String()
	if snap.VPNName != "" {
		v += " " + snap.VPNName
	}
	f.Text(2, y, r.face, v, false)

	r.bar(f, []string{"Sys", "Info", "VPN"})
}

func clientsText(n int32) string {
	if n < 0 {
		return "?"
	}
	return fmt.Sprintf("%d", n)
}

func (r *Renderer) systemMenu(f *panel.Frame) {
	w, h := r.size.X, r.size.Y
	barY := h - barH
	left := image.Rect(4, 4, w/2-4, barY-4)
	right := image.Rect(w/2+4, 4, w-4, barY-4)
	f.Outline(left, false)
	f.Outline(right, false)
	f.Text(left.Min.X+8, (left.Min.Y+left.Max.Y+lineH)/2, r.face, "Reboot", false)
	f.Text(right.Min.X+8, (right.Min.Y+right.Max.Y+lineH)/2, r.face, "Shutdown", false)
	r.bar(f, []string{"Back"})
}

func (r *Renderer) info(f *panel.Frame, snap *Snapshot) {
	if snap.InfoPage == 0 {
		r.infoJoin(f, snap)
	} else {
		r.infoStats(f, snap)
	}
	f.Text(2, r.size.Y-barH+lineH, r.face, fmt.Sprintf("< %d/%d >", snap.InfoPage+1, InfoPageCount), false)
}

// infoJoin shows the hotspot join QR so a phone camera can connect
// without typing the SSID.
func (r *Renderer) infoJoin(f *panel.Frame, snap *Snapshot) {
	f.Text(sideW+4, lineH, r.face, "Join AP: "+snap.APSSID, false)
	content := fmt.Sprintf("WIFI:T:WPA;S:%s;;", snap.APSSID)
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		r.log.Errorf("render qr: %v", err)
		return
	}
	bmp := qr.Bitmap()
	avail := r.size.Y - barH - lineH - 4
	scale := avail / len(bmp)
	if scale < 1 {
		scale = 1
	}
	x0 := (r.size.X - len(bmp)*scale) / 2
	y0 := lineH + 4
	for by, row := range bmp {
		for bx, black := range row {
			if !black {
				continue
			}
			f.Rect(image.Rect(
				x0+bx*scale, y0+by*scale,
				x0+(bx+1)*scale, y0+(by+1)*scale), false)
		}
	}
}

func (r *Renderer) infoStats(f *panel.Frame, snap *Snapshot) {
	y := lineH
	lines := []string{
		"CPU: " + snap.CPUUsage + " " + snap.CPUTemp + "C",
		"Mem: " + snap.MemUsage,
		"Up: " + snap.Uptime,
		"IP: " + snap.PublicIP,
		"Geo: " + snap.Geo,
	}
	for _, s := range lines {
		f.Text(sideW+4, y, r.face, s, false)
		y += lineH
	}
}

func (r *Renderer) vpnMenu(f *panel.Frame, snap *Snapshot, profiles []vpn.Profile) {
	w := r.size.X
	if len(profiles) == 0 {
		f.Text(2, lineH, r.face, "no profiles configured", false)
	}
	y := 0
	for i := snap.VpnScroll; i < len(profiles) && y+rowH <= r.size.Y-barH; i++ {
		p := profiles[i]
		label := p.Name
		if snap.VPN == vpn.StatusOn && snap.VPNName == p.Name {
			label = "> " + label
		}
		f.Text(4, y+lineH, r.face, label, false)
		f.HLine(0, w-sideW, y+rowH-1, false)
		y += rowH
	}
	f.Text(w-sideW+8, lineH, r.face, "^", false)
	f.Text(w-sideW+8, r.size.Y-barH-4, r.face, "v", false)
	labels := []string{"", "Back"}
	if snap.VPN == vpn.StatusOn {
		labels[0] = "Disc"
	}
	r.bar(f, labels)
}

// bar paints the bottom button bar with n equal cells.
func (r *Renderer) bar(f *panel.Frame, labels []string) {
	w, h := r.size.X, r.size.Y
	barY := h - barH
	n := len(labels)
	cell := w / n
	for i, label := range labels {
		x0 := i * cell
		x1 := x0 + cell - gapW
		if i == n-1 {
			x1 = w
		}
		rect := image.Rect(x0, barY, x1, h)
		f.Outline(rect, false)
		if label == "" {
			continue
		}
		tx := x0 + (x1-x0-panel.TextWidth(r.face, label))/2
		f.Text(tx, barY+lineH+2, r.face, label, false)
	}
}
