package vpn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/log2"
)

func testController(t testing.TB) (*Controller, *shell.Mock) {
	log := log2.NewTest(t, log2.LDebug)
	run := shell.NewMock()
	config := &Config{ProfilesFile: "/nonexistent/profiles.hcl"}
	config.Vars()
	c := NewController(log, run, config)
	c.XXX_testClock(func(time.Duration) {})
	return c, run
}

func isActiveCmd(unit string) string {
	return "sudo systemctl is-active " + unit + " 2>/dev/null || true"
}

func TestParseProfiles(t *testing.T) {
	t.Parallel()
	ps, err := ParseProfiles([]byte(`
profile "HomeVPN" {
  server = "home.example.com"
  protocol = "wireguard"
}
profile "Office" {
  server = "office.example.com"
}
`))
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "HomeVPN", ps[0].Name)
	assert.Equal(t, "home.example.com", ps[0].Server)
	assert.Equal(t, "wg-quick@homevpn", ps[0].Unit())
	assert.Equal(t, ProtocolOpenVPN, ps[1].Protocol)
	assert.Equal(t, "openvpn-client@office", ps[1].Unit())
}

func TestParseProfilesInvalid(t *testing.T) {
	t.Parallel()
	_, err := ParseProfiles([]byte(`profile "x" {}`))
	assert.Error(t, err)
	_, err = ParseProfiles([]byte(`{{{`))
	assert.Error(t, err)
}

func TestLoadProfilesAbsent(t *testing.T) {
	t.Parallel()
	log := log2.NewTest(t, log2.LDebug)
	assert.Empty(t, LoadProfiles(log, "/nonexistent/profiles.hcl"))
}

func TestConnectSuccess(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "HomeVPN", Server: "home.example.com", Protocol: "wireguard"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")

	egress := 0
	c.OnEgressChange = func() { egress++ }
	require.NoError(t, c.Connect(context.Background(), p, nil))
	assert.Equal(t, StatusOn, c.Status())
	require.NotNil(t, c.Active())
	assert.Equal(t, "HomeVPN", c.Active().Name)
	assert.Equal(t, 1, egress)
}

func TestConnectHealthOutcomes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		health string
		expect Status
	}{
		{"inactive-maps-off", "inactive", StatusOff},
		{"failed-maps-off", "failed", StatusOff},
		{"indeterminate-maps-error", "", StatusError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, run := testController(t)
			p := Profile{Name: "HomeVPN", Server: "home.example.com"}
			run.Respond("sudo systemctl start "+p.Unit(), "")
			run.Respond(isActiveCmd(p.Unit()), tc.health)
			assert.Error(t, c.Connect(context.Background(), p, nil))
			assert.Equal(t, tc.expect, c.Status())
			assert.Nil(t, c.Active())
		})
	}
}

func TestConnectSwitchesProfile(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	a := Profile{Name: "A", Server: "a.example.com"}
	b := Profile{Name: "B", Server: "b.example.com"}
	run.Respond("sudo systemctl start "+a.Unit(), "")
	run.Respond(isActiveCmd(a.Unit()), "active")
	require.NoError(t, c.Connect(context.Background(), a, nil))

	// switching to B: exactly one stop of A, one start of B
	run.Respond("sudo systemctl stop "+a.Unit(), "")
	run.Respond(isActiveCmd(a.Unit()), "inactive")
	run.Respond("sudo systemctl start "+b.Unit(), "")
	run.Respond(isActiveCmd(b.Unit()), "active")
	egress := 0
	c.OnEgressChange = func() { egress++ }
	require.NoError(t, c.Connect(context.Background(), b, nil))

	assert.Equal(t, []string{"sudo systemctl stop " + a.Unit()}, run.CallsPrefix("sudo systemctl stop "))
	assert.Equal(t, 1, len(run.CallsPrefix("sudo systemctl start "+b.Unit())))
	assert.Equal(t, StatusOn, c.Status())
	assert.Equal(t, "B", c.Active().Name)
	// silent sub-step disconnect must not fire egress side effects
	assert.Equal(t, 1, egress)
}

func TestConnectAlreadyActiveNoop(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "A", Server: "a.example.com"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")
	require.NoError(t, c.Connect(context.Background(), p, nil))
	starts := len(run.CallsPrefix("sudo systemctl start "))

	require.NoError(t, c.Connect(context.Background(), p, nil))
	assert.Equal(t, starts, len(run.CallsPrefix("sudo systemctl start ")))
	assert.Equal(t, StatusOn, c.Status())
}

// A tunnel dying outside the panel's control must surface on the
// periodic re-check, not read "on" forever.
func TestRefreshDetectsDeadTunnel(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "A", Server: "a.example.com"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")
	egress := 0
	c.OnEgressChange = func() { egress++ }
	require.NoError(t, c.Connect(context.Background(), p, nil))
	require.Equal(t, 1, egress)

	run.Respond(isActiveCmd(p.Unit()), "inactive")
	c.Refresh(context.Background())
	assert.Equal(t, StatusOff, c.Status())
	assert.Nil(t, c.Active())
	assert.Equal(t, 2, egress)
}

func TestRefreshIndeterminateKeepsActive(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "A", Server: "a.example.com"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")
	require.NoError(t, c.Connect(context.Background(), p, nil))

	run.Respond(isActiveCmd(p.Unit()), "")
	c.Refresh(context.Background())
	assert.Equal(t, StatusError, c.Status())
	require.NotNil(t, c.Active())
}

func TestRefreshNothingActive(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	c.Refresh(context.Background())
	assert.Equal(t, StatusOff, c.Status())
	assert.Empty(t, run.Calls())
}

func TestDisconnect(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "A", Server: "a.example.com"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")
	require.NoError(t, c.Connect(context.Background(), p, nil))

	run.Respond("sudo systemctl stop "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "inactive")
	msgs := []string{}
	require.NoError(t, c.Disconnect(context.Background(), func(s string) { msgs = append(msgs, s) }))
	assert.Equal(t, StatusOff, c.Status())
	assert.Nil(t, c.Active())
	assert.Equal(t, []string{"Disconnecting A...", "VPN off"}, msgs)
}

func TestDisconnectNothingActive(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	require.NoError(t, c.Disconnect(context.Background(), nil))
	assert.Equal(t, StatusOff, c.Status())
	assert.Empty(t, run.Calls())
}

// disconnect proceeds even when the unit refuses to die; the state
// still reads Off and a warning is logged.
func TestDisconnectHealthDisagrees(t *testing.T) {
	t.Parallel()
	c, run := testController(t)
	p := Profile{Name: "A", Server: "a.example.com"}
	run.Respond("sudo systemctl start "+p.Unit(), "")
	run.Respond(isActiveCmd(p.Unit()), "active")
	require.NoError(t, c.Connect(context.Background(), p, nil))

	run.Respond("sudo systemctl stop "+p.Unit(), "")
	// is-active still reports active after settle
	require.NoError(t, c.Disconnect(context.Background(), nil))
	assert.Equal(t, StatusOff, c.Status())
	assert.Nil(t, c.Active())
}
