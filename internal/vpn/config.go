package vpn

import (
	"time"

	"github.com/temoto/appanel/helpers"
)

type Config struct {
	ProfilesFile        string `hcl:"profiles_file"`
	ConnectSettleSec    int    `hcl:"connect_settle_sec"`
	DisconnectSettleSec int    `hcl:"disconnect_settle_sec"`

	ConnectSettle    time.Duration `hcl:"-"`
	DisconnectSettle time.Duration `hcl:"-"`
}

func (c *Config) Vars() {
	if c.ProfilesFile == "" {
		c.ProfilesFile = "/etc/appanel/vpn-profiles.hcl"
	}
	c.ConnectSettle = helpers.IntSecondDefault(c.ConnectSettleSec, 7*time.Second)
	c.DisconnectSettle = helpers.IntSecondDefault(c.DisconnectSettleSec, 3*time.Second)
}
