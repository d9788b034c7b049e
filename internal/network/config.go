package network

import (
	"time"

	"github.com/temoto/appanel/helpers"
)

type Config struct {
	UplinkInterface  string `hcl:"uplink_interface"`
	APInterface      string `hcl:"ap_interface"`
	APConfigFile     string `hcl:"ap_config_file"`
	NetSettleSec     int    `hcl:"net_settle_sec"`
	HotspotSettleSec int    `hcl:"hotspot_settle_sec"`
	StepDelayMs      int    `hcl:"step_delay_ms"`

	NetSettle     time.Duration `hcl:"-"`
	HotspotSettle time.Duration `hcl:"-"`
	StepDelay     time.Duration `hcl:"-"`
}

func (c *Config) Vars() {
	if c.UplinkInterface == "" {
		c.UplinkInterface = "wlan0"
	}
	if c.APInterface == "" {
		c.APInterface = "wlan1"
	}
	if c.APConfigFile == "" {
		c.APConfigFile = "/etc/hostapd/hostapd.conf"
	}
	c.NetSettle = helpers.IntSecondDefault(c.NetSettleSec, 10*time.Second)
	c.HotspotSettle = helpers.IntSecondDefault(c.HotspotSettleSec, 5*time.Second)
	c.StepDelay = helpers.IntMillisecondDefault(c.StepDelayMs, 1000*time.Millisecond)
}
