package ui

import (
	"strconv"

	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/sysd"
	"github.com/temoto/appanel/internal/vpn"
)

// Snapshot captures everything the active screen displays. Fields not
// visible under the current screen stay at zero values so they cannot
// force spurious redraws.
type Snapshot struct {
	Screen Screen

	Net        network.Status
	Hotspot    sysd.Health
	UplinkSSID string
	UplinkIP   string
	APSSID     string
	APClients  int32

	VPN     vpn.Status
	VPNName string

	CPUTemp  string // tolerance compare, see Changed
	CPUUsage string
	MemUsage string
	Uptime   string
	PublicIP string
	Geo      string

	InfoPage  int
	VpnScroll int
}

// Changed reports whether the panel needs a repaint. All fields compare
// strictly except CPUTemp: both sides parsing as numbers within
// tempThreshold of each other count as equal. nil prev always redraws.
func (s *Snapshot) Changed(prev *Snapshot, tempThreshold float64) bool {
	if prev == nil {
		return true
	}
	if s.Screen != prev.Screen ||
		s.Net != prev.Net ||
		s.Hotspot != prev.Hotspot ||
		s.UplinkSSID != prev.UplinkSSID ||
		s.UplinkIP != prev.UplinkIP ||
		s.APSSID != prev.APSSID ||
		s.APClients != prev.APClients ||
		s.VPN != prev.VPN ||
		s.VPNName != prev.VPNName ||
		s.CPUUsage != prev.CPUUsage ||
		s.MemUsage != prev.MemUsage ||
		s.Uptime != prev.Uptime ||
		s.PublicIP != prev.PublicIP ||
		s.Geo != prev.Geo ||
		s.InfoPage != prev.InfoPage ||
		s.VpnScroll != prev.VpnScroll {
		return true
	}
	return tempChanged(prev.CPUTemp, s.CPUTemp, tempThreshold)
}

func tempChanged(old, new string, threshold float64) bool {
	a, errA := strconv.ParseFloat(old, 64)
	b, errB := strconv.ParseFloat(new, 64)
	if errA != nil || errB != nil {
		return old != new
	}
	d := b - a
	if d < 0 {
		d = -d
	}
	return d > threshold
}
