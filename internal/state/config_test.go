package state

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/temoto/alive/v2"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/tele"
	"github.com/temoto/appanel/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(testing.TB, context.Context)
		expectErr string
	}
	cases := []Case{
		{"defaults", "", func(t testing.TB, ctx context.Context) {
			g := GetGlobal(ctx)
			assert.Equal(t, "/dev/fb0", g.Config.Hardware.Panel.FbDevice)
			assert.Equal(t, 250, g.Config.Hardware.Panel.Width)
			assert.Equal(t, 122, g.Config.Hardware.Panel.Height)
			assert.Equal(t, "wlan0", g.Config.Net.UplinkInterface)
			assert.Equal(t, "wlan1", g.Config.Net.APInterface)
			assert.Equal(t, 500*time.Millisecond, g.Config.UI.Cooldown)
			assert.Equal(t, 100*time.Millisecond, g.Config.UI.LoopSleep)
			assert.Equal(t, 7*time.Second, g.Config.VPN.ConnectSettle)
			assert.Equal(t, 900*time.Second, g.Config.Status.GeoTTL)
		}, ""},

		{"hardware",
			`hardware { panel { fb_device = "/dev/fb1" width = 128 height = 64 }
touch { enable = true device = "/dev/input/event3" gpio_chip = "/dev/gpiochip0" int_line = 27 } }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, "/dev/fb1", g.Config.Hardware.Panel.FbDevice)
				assert.Equal(t, 128, g.Config.Hardware.Panel.Width)
				assert.True(t, g.Config.Hardware.Touch.Enable)
				assert.Equal(t, 27, g.Config.Hardware.Touch.IntLine)
			},
			"",
		},

		{"net",
			`net { uplink_interface = "wlan9" net_settle_sec = 3 }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, "wlan9", g.Config.Net.UplinkInterface)
				assert.Equal(t, 3*time.Second, g.Config.Net.NetSettle)
			},
			"",
		},

		{"include-optional", `
include "net-wlan7" {}
include "non-exist" { optional = true }`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, "wlan7", g.Config.Net.UplinkInterface)
			}, ""},

		{"include-overwrites", `
net { uplink_interface = "wlan0" }
include "net-wlan7" {}`,
			func(t testing.TB, ctx context.Context) {
				g := GetGlobal(ctx)
				assert.Equal(t, "wlan7", g.Config.Net.UplinkInterface)
			}, ""},

		{"error-syntax", `hello`, nil, "key 'hello' expected start of object"},
		{"error-include-loop", `include "include-loop" {}`, nil, "config include loop: from=include-loop include=include-loop"},
	}
	mkCheck := func(c Case) func(*testing.T) {
		return func(t *testing.T) {
			log := log2.NewTest(t, log2.LDebug)

			// XXX FIXME code duplicate from NewContext but stupid import cycle
			g := &Global{
				Alive: alive.NewAlive(),
				Log:   log,
				Tele:  tele.NewStub(),
				Shell: shell.NewMock(),
			}
			ctx := context.Background()
			ctx = context.WithValue(ctx, log2.ContextKey, log)
			ctx = context.WithValue(ctx, ContextKey, g)

			fs := NewMockFullReader(map[string]string{
				"test-inline":  c.input,
				"net-wlan7":    `net { uplink_interface = "wlan7" }`,
				"include-loop": `include "include-loop" {}`,
			})
			cfg, err := ReadConfig(log, fs, "test-inline")
			if err == nil {
				err = g.Init(ctx, cfg)
			}
			if c.expectErr == "" {
				if err != nil {
					t.Fatalf("error expected=nil actual='%v'", errors.ErrorStack(err))
				}
				if c.check != nil {
					c.check(t, ctx)
				}
			} else {
				if !strings.Contains(err.Error(), c.expectErr) {
					t.Fatalf("error expected='%s' actual='%v'", c.expectErr, err)
				}
			}
		}
	}
	for _, c := range cases {
		t.Run(c.name, mkCheck(c))
	}
}
