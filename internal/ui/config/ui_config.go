package ui_config

import (
	"time"

	"github.com/temoto/appanel/helpers"
)

type Config struct {
	CooldownMs     int `hcl:"cooldown_ms"`
	IgnoreMs       int `hcl:"ignore_ms"`
	LoopSleepMs    int `hcl:"loop_sleep_ms"`
	PeriodicSec    int `hcl:"periodic_sec"`
	VisibleVpnRows int `hcl:"visible_vpn_rows"`
	// Redraw only when CPU temperature moved more than this many
	// degrees, in tenths. 0 means default.
	TempThresholdTenths int `hcl:"temp_threshold_tenths"`

	Cooldown      time.Duration `hcl:"-"`
	Ignore        time.Duration `hcl:"-"`
	LoopSleep     time.Duration `hcl:"-"`
	Periodic      time.Duration `hcl:"-"`
	TempThreshold float64       `hcl:"-"`
}

func (c *Config) Vars() {
	if c.VisibleVpnRows == 0 {
		c.VisibleVpnRows = 3
	}
	if c.TempThresholdTenths == 0 {
		c.TempThresholdTenths = 15
	}
	c.Cooldown = helpers.IntMillisecondDefault(c.CooldownMs, 500*time.Millisecond)
	c.Ignore = helpers.IntMillisecondDefault(c.IgnoreMs, 900*time.Millisecond)
	c.LoopSleep = helpers.IntMillisecondDefault(c.LoopSleepMs, 100*time.Millisecond)
	c.Periodic = helpers.IntSecondDefault(c.PeriodicSec, 5*time.Second)
	c.TempThreshold = float64(c.TempThresholdTenths) / 10
}
