package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/appanel/internal/raspap"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/sysd"
	"github.com/temoto/appanel/log2"
)

func testController(t testing.TB) (*Controller, *shell.Mock) {
	log := log2.NewTest(t, log2.LDebug)
	run := shell.NewMock()
	config := &Config{}
	config.Vars()
	api := raspap.NewClient(log, "", "", nil) // no key, API unavailable
	c := NewController(log, run, api, config)
	c.XXX_testClock(func(time.Duration) {})
	return c, run
}

func TestRefreshNetwork(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		ssid   string
		ipOut  string
		expect Status
	}{
		{"connected", "homenet", "    inet 192.168.1.7/24 brd 192.168.1.255 scope global wlan0", StatusConnected},
		{"no-ip", "homenet", "", StatusAssociatedNoIP},
		{"link-local-only", "homenet", "    inet 169.254.12.1/16 scope link wlan0", StatusAssociatedNoIP},
		{"disconnected", "", "", StatusDisconnected},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			ctl, run := testController(t)
			run.Respond("iwgetid -r wlan0 2>/dev/null || true", c.ssid)
			run.Respond("ip -4 addr show wlan0 2>/dev/null || true", c.ipOut)
			assert.Equal(t, c.expect, ctl.RefreshNetwork(context.Background()))
			assert.Equal(t, c.expect, ctl.Network())
		})
	}
}

func TestRefreshHotspotFallback(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("sudo systemctl is-active hostapd 2>/dev/null || true", "active")
	assert.Equal(t, sysd.HealthActive, ctl.RefreshHotspot(context.Background()))

	run.Respond("sudo systemctl is-active hostapd 2>/dev/null || true", "inactive")
	assert.Equal(t, sysd.HealthInactive, ctl.RefreshHotspot(context.Background()))

	run.Respond("sudo systemctl is-active hostapd 2>/dev/null || true", "")
	assert.Equal(t, sysd.HealthIndeterminate, ctl.RefreshHotspot(context.Background()))
}

func TestAPSSIDConfigFallback(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("grep '^ssid=' /etc/hostapd/hostapd.conf | head -n1 | cut -d= -f2-", "panel-ap")
	ssid, err := ctl.APSSID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "panel-ap", ssid)
}

func TestAPClientsStationDump(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("ip link show wlan1 up 2>/dev/null || true", "3: wlan1: <BROADCAST,MULTICAST,UP> mtu 1500")
	run.Respond("sudo iw dev wlan1 station dump | grep -c '^Station ' || true", "2")
	n, err := ctl.APClients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAPClientsInterfaceDown(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("ip link show wlan1 up 2>/dev/null || true", "")
	n, err := ctl.APClients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestToggleHotspotStartOrder(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("sudo systemctl is-active hostapd 2>/dev/null || true", "inactive")
	run.Respond("sudo rfkill unblock wlan", "")
	run.Respond("sudo systemctl stop wpa_supplicant", "")
	run.Respond("sudo systemctl restart dnsmasq", "")
	run.Respond("sudo systemctl restart hostapd", "")

	msgs := []string{}
	require.NoError(t, ctl.ToggleHotspot(context.Background(), func(s string) { msgs = append(msgs, s) }))
	assert.Equal(t, []string{"Starting hotspot..."}, msgs)
	assert.Equal(t, []string{
		"sudo systemctl is-active hostapd 2>/dev/null || true",
		"sudo rfkill unblock wlan",
		"sudo systemctl stop wpa_supplicant",
		"sudo systemctl restart dnsmasq",
		"sudo systemctl restart hostapd",
		"sudo systemctl is-active hostapd 2>/dev/null || true",
	}, run.Calls())
}

func TestToggleHotspotStop(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("sudo systemctl is-active hostapd 2>/dev/null || true", "active")
	run.Respond("sudo systemctl stop hostapd", "")
	run.Respond("sudo systemctl stop dnsmasq", "")
	require.NoError(t, ctl.ToggleHotspot(context.Background(), nil))
	assert.Contains(t, run.Calls(), "sudo systemctl stop hostapd")
	assert.Contains(t, run.Calls(), "sudo systemctl stop dnsmasq")
}

func TestToggleNetworkUp(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("iwgetid -r wlan0 2>/dev/null || true", "")
	run.Respond("ip -4 addr show wlan0 2>/dev/null || true", "")
	run.Respond("sudo ip link set wlan0 up", "")
	run.Respond("sudo systemctl try-restart wpa_supplicant", "")
	slept := time.Duration(0)
	ctl.sleep = func(d time.Duration) { slept += d }
	require.NoError(t, ctl.ToggleNetwork(context.Background(), nil))
	assert.Equal(t, 10*time.Second, slept)
	assert.Contains(t, run.Calls(), "sudo ip link set wlan0 up")
}

func TestToggleNetworkDown(t *testing.T) {
	t.Parallel()
	ctl, run := testController(t)
	run.Respond("iwgetid -r wlan0 2>/dev/null || true", "homenet")
	run.Respond("ip -4 addr show wlan0 2>/dev/null || true", "    inet 10.0.0.5/24 scope global wlan0")
	run.Respond("sudo ip link set wlan0 down", "")
	require.NoError(t, ctl.ToggleNetwork(context.Background(), nil))
	assert.Contains(t, run.Calls(), "sudo ip link set wlan0 down")
}
