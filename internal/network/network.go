// Package network queries and toggles the uplink Wi-Fi client and the
// hostapd access point.
package network

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/appanel/internal/raspap"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/sysd"
	"github.com/temoto/appanel/log2"
)

type Status uint8

const (
	StatusDisconnected Status = iota
	StatusAssociatedNoIP
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusAssociatedNoIP:
		return "associated-no-ip"
	}
	return "disconnected"
}

type Controller struct {
	Log    *log2.Log
	Shell  shell.Runner
	API    *raspap.Client
	Config *Config

	sleep func(time.Duration)

	mu      sync.Mutex
	lastNet Status
	lastAP  sysd.Health
}

func NewController(log *log2.Log, run shell.Runner, api *raspap.Client, config *Config) *Controller {
	return &Controller{
		Log:    log,
		Shell:  run,
		API:    api,
		Config: config,
		sleep:  time.Sleep,
	}
}

// InterfaceIP returns first global IPv4 address of iface, or empty.
// Loopback and link-local (169.254.) addresses do not count.
func (c *Controller) InterfaceIP(ctx context.Context, iface string) string {
	out, err := c.Shell.Run(ctx, fmt.Sprintf("ip -4 addr show %s 2>/dev/null || true", iface))
	if err != nil {
		c.Log.Errorf("net: ip addr show %s: %v", iface, err)
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "inet ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		addr := fields[1]
		if i := strings.IndexByte(addr, '/'); i >= 0 {
			addr = addr[:i]
		}
		if strings.HasPrefix(addr, "127.") || strings.HasPrefix(addr, "169.254.") {
			continue
		}
		return addr
	}
	return ""
}

// UplinkSSID returns the SSID the uplink interface is associated with,
// or empty when not associated.
func (c *Controller) UplinkSSID(ctx context.Context) string {
	out, err := c.Shell.Run(ctx, fmt.Sprintf("iwgetid -r %s 2>/dev/null || true", c.Config.UplinkInterface))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// RefreshNetwork probes uplink association and address, logging transitions.
func (c *Controller) RefreshNetwork(ctx context.Context) Status {
	st := StatusDisconnected
	if ssid := c.UplinkSSID(ctx); ssid != "" {
		if ip := c.InterfaceIP(ctx, c.Config.UplinkInterface); ip != "" {
			st = StatusConnected
		} else {
			st = StatusAssociatedNoIP
		}
	}
	c.mu.Lock()
	prev := c.lastNet
	c.lastNet = st
	c.mu.Unlock()
	if st != prev {
		c.Log.Infof("net: uplink %s %s -> %s", c.Config.UplinkInterface, prev.String(), st.String())
	}
	return st
}

func (c *Controller) Network() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastNet
}

// RefreshHotspot asks the RaspAP API for hostapd state, falling back to
// systemd when the API is unavailable or errors.
func (c *Controller) RefreshHotspot(ctx context.Context) sysd.Health {
	h := sysd.HealthIndeterminate
	if c.API.Available() {
		if sys, err := c.API.System(ctx); err == nil {
			if sys.HostapdStatus == 1 {
				h = sysd.HealthActive
			} else {
				h = sysd.HealthInactive
			}
		} else {
			c.Log.Debugf("net: raspap system: %v", err)
		}
	}
	if h == sysd.HealthIndeterminate {
		h = sysd.IsActive(ctx, c.Shell, "hostapd")
	}
	c.mu.Lock()
	prev := c.lastAP
	c.lastAP = h
	c.mu.Unlock()
	if h != prev {
		c.Log.Infof("net: hostapd %s -> %s", prev.String(), h.String())
	}
	return h
}

func (c *Controller) Hotspot() sysd.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAP
}

// APSSID prefers the RaspAP API, then the hostapd config file.
func (c *Controller) APSSID(ctx context.Context) (string, error) {
	if c.API.Available() {
		if ap, err := c.API.AP(ctx); err == nil {
			return ap.SSID, nil
		} else {
			c.Log.Debugf("net: raspap ap: %v", err)
		}
	}
	out, err := c.Shell.Run(ctx, fmt.Sprintf("grep '^ssid=' %s | head -n1 | cut -d= -f2-", c.Config.APConfigFile))
	if err != nil {
		return "", errors.Annotate(err, "ap ssid")
	}
	if out == "" {
		return "", errors.Errorf("ap ssid: not found in %s", c.Config.APConfigFile)
	}
	return out, nil
}

// APClients prefers the RaspAP API, then counts stations with iw.
// Returns 0 when the AP interface is down.
func (c *Controller) APClients(ctx context.Context) (int, error) {
	iface := c.Config.APInterface
	if c.API.Available() {
		if n, err := c.API.Clients(ctx, iface); err == nil {
			return n, nil
		} else {
			c.Log.Debugf("net: raspap clients: %v", err)
		}
	}
	out, err := c.Shell.Run(ctx, fmt.Sprintf("ip link show %s up 2>/dev/null || true", iface))
	if err != nil || out == "" {
		return 0, nil
	}
	out, err = c.Shell.Run(ctx, fmt.Sprintf("sudo iw dev %s station dump | grep -c '^Station ' || true", iface))
	if err != nil {
		return 0, errors.Annotate(err, "ap clients")
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, errors.Annotatef(err, "ap clients parse %q", out)
	}
	return n, nil
}

// ToggleNetwork brings the uplink down when connected, up otherwise.
// progress receives short human text for intermediate frames; may be nil.
func (c *Controller) ToggleNetwork(ctx context.Context, progress func(string)) error {
	if progress == nil {
		progress = func(string) {}
	}
	iface := c.Config.UplinkInterface
	if c.RefreshNetwork(ctx) != StatusDisconnected {
		progress("Disconnecting Wi-Fi...")
		c.Log.Infof("net: %s down", iface)
		if _, err := c.Shell.Run(ctx, "sudo ip link set "+iface+" down"); err != nil {
			return errors.Annotate(err, "uplink down")
		}
	} else {
		progress("Connecting Wi-Fi...")
		c.Log.Infof("net: %s up", iface)
		if _, err := c.Shell.Run(ctx, "sudo ip link set "+iface+" up"); err != nil {
			return errors.Annotate(err, "uplink up")
		}
		if err := sysd.TryRestart(ctx, c.Shell, "wpa_supplicant"); err != nil {
			c.Log.Errorf("net: wpa_supplicant try-restart: %v", err)
		}
		c.sleep(c.Config.NetSettle)
	}
	c.RefreshNetwork(ctx)
	return nil
}

// ToggleHotspot stops hostapd when active; otherwise unblocks radio and
// brings the AP stack up in dependency order, pausing between steps.
func (c *Controller) ToggleHotspot(ctx context.Context, progress func(string)) error {
	if progress == nil {
		progress = func(string) {}
	}
	if c.RefreshHotspot(ctx) == sysd.HealthActive {
		progress("Stopping hotspot...")
		c.Log.Infof("net: hotspot stop")
		if err := sysd.Stop(ctx, c.Shell, "hostapd"); err != nil {
			return errors.Annotate(err, "hotspot stop")
		}
		if err := sysd.Stop(ctx, c.Shell, "dnsmasq"); err != nil {
			c.Log.Errorf("net: dnsmasq stop: %v", err)
		}
	} else {
		progress("Starting hotspot...")
		c.Log.Infof("net: hotspot start")
		if _, err := c.Shell.Run(ctx, "sudo rfkill unblock wlan"); err != nil {
			return errors.Annotate(err, "rfkill unblock")
		}
		c.sleep(c.Config.StepDelay)
		if err := sysd.Stop(ctx, c.Shell, "wpa_supplicant"); err != nil {
			c.Log.Errorf("net: wpa_supplicant stop: %v", err)
		}
		c.sleep(c.Config.StepDelay)
		if err := sysd.Restart(ctx, c.Shell, "dnsmasq"); err != nil {
			c.Log.Errorf("net: dnsmasq restart: %v", err)
		}
		c.sleep(c.Config.StepDelay)
		if err := sysd.Restart(ctx, c.Shell, "hostapd"); err != nil {
			return errors.Annotate(err, "hostapd restart")
		}
	}
	c.sleep(c.Config.HotspotSettle)
	c.RefreshHotspot(ctx)
	return nil
}

// XXX_testClock replaces the settle sleep in tests.
func (c *Controller) XXX_testClock(sleep func(time.Duration)) { c.sleep = sleep }
