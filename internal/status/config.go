package status

import (
	"time"

	"github.com/temoto/appanel/helpers"
)

type Config struct {
	APTTLSec      int    `hcl:"ap_ttl_sec"`
	StatsTTLSec   int    `hcl:"stats_ttl_sec"`
	GeoTTLSec     int    `hcl:"geo_ttl_sec"`
	GeoTimeoutSec int    `hcl:"geo_timeout_sec"`
	GeoURL        string `hcl:"geo_url"`
	ThermalZone   string `hcl:"thermal_zone"`

	APTTL      time.Duration `hcl:"-"`
	StatsTTL   time.Duration `hcl:"-"`
	GeoTTL     time.Duration `hcl:"-"`
	GeoTimeout time.Duration `hcl:"-"`
}

func (c *Config) Vars() {
	if c.GeoURL == "" {
		c.GeoURL = "https://ipapi.co/json/"
	}
	if c.ThermalZone == "" {
		c.ThermalZone = "/sys/class/thermal/thermal_zone0/temp"
	}
	c.APTTL = helpers.IntSecondDefault(c.APTTLSec, 5*time.Second)
	c.StatsTTL = helpers.IntSecondDefault(c.StatsTTLSec, 5*time.Second)
	c.GeoTTL = helpers.IntSecondDefault(c.GeoTTLSec, 900*time.Second)
	c.GeoTimeout = helpers.IntSecondDefault(c.GeoTimeoutSec, 3*time.Second)
}
