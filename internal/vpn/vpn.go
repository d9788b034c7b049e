// Package vpn drives per-profile tunnel units and tracks one active
// tunnel at a time.
package vpn

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/sysd"
	"github.com/temoto/appanel/log2"
)

type Status uint8

const (
	StatusOff Status = iota
	StatusConnecting
	StatusOn
	StatusDisconnecting
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOn:
		return "on"
	case StatusDisconnecting:
		return "disconnecting"
	case StatusError:
		return "error"
	}
	return "off"
}

type Controller struct {
	Log    *log2.Log
	Shell  shell.Runner
	Config *Config

	// OnEgressChange runs after a successful connect and after a
	// non-silent disconnect. Egress IP likely changed.
	OnEgressChange func()

	sleep func(time.Duration)

	mu       sync.Mutex
	profiles []Profile
	active   *Profile
	status   Status
}

func NewController(log *log2.Log, run shell.Runner, config *Config) *Controller {
	c := &Controller{
		Log:    log,
		Shell:  run,
		Config: config,
		sleep:  time.Sleep,
	}
	c.profiles = LoadProfiles(log, config.ProfilesFile)
	return c
}

func (c *Controller) Profiles() []Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiles
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Active returns the current tunnel profile or nil.
func (c *Controller) Active() *Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	prev := c.status
	c.status = s
	c.mu.Unlock()
	if s != prev {
		c.Log.Infof("vpn: %s -> %s", prev.String(), s.String())
	}
}

// Health probes the active tunnel's unit. Indeterminate maps to Error,
// never to Off: a stuck unit must stay visible.
func (c *Controller) Health(ctx context.Context, p *Profile) sysd.Health {
	return sysd.IsActive(ctx, c.Shell, p.Unit())
}

// Refresh re-verifies the active tunnel's unit. A tunnel that died
// outside our control downgrades to off; an indeterminate unit shows
// as error but keeps the profile so Disconnect stays available.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	cur := c.active
	st := c.status
	c.mu.Unlock()
	if cur == nil || st != StatusOn {
		return
	}
	switch c.Health(ctx, cur) {
	case sysd.HealthActive:
	case sysd.HealthInactive:
		c.Log.Infof("vpn: %s unit went inactive", cur.Name)
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		c.setStatus(StatusOff)
		if c.OnEgressChange != nil {
			c.OnEgressChange()
		}
	default:
		c.setStatus(StatusError)
	}
}

// Connect brings the profile's tunnel up. Already-active healthy
// profile is a no-op. A different active profile is disconnected first,
// silently, without the post-disconnect side effects.
// progress receives short human text for intermediate frames; may be nil.
func (c *Controller) Connect(ctx context.Context, p Profile, progress func(string)) error {
	if progress == nil {
		progress = func(string) {}
	}
	c.mu.Lock()
	cur := c.active
	c.mu.Unlock()
	if cur != nil && cur.Key() == p.Key() {
		if c.Health(ctx, cur) == sysd.HealthActive {
			c.Log.Debugf("vpn: connect %s: already active", p.Name)
			return nil
		}
	}

	c.setStatus(StatusConnecting)
	progress("Connecting " + p.Name + "...")
	if cur != nil && cur.Key() != p.Key() {
		if err := c.disconnect(ctx, cur, nil, true); err != nil {
			c.Log.Errorf("vpn: pre-connect disconnect %s: %v", cur.Name, err)
		}
	}

	c.Log.Infof("vpn: connect %s unit=%s", p.Name, p.Unit())
	if err := sysd.Start(ctx, c.Shell, p.Unit()); err != nil {
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		c.setStatus(StatusError)
		progress("VPN failed: " + p.Name)
		return errors.Annotatef(err, "vpn connect %s", p.Name)
	}
	c.sleep(c.Config.ConnectSettle)

	switch h := c.Health(ctx, &p); h {
	case sysd.HealthActive:
		c.mu.Lock()
		pp := p
		c.active = &pp
		c.mu.Unlock()
		c.setStatus(StatusOn)
		progress("VPN on: " + p.Name)
		if c.OnEgressChange != nil {
			c.OnEgressChange()
		}
		return nil
	case sysd.HealthInactive:
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		c.setStatus(StatusOff)
		progress("VPN failed: " + p.Name)
		return errors.Errorf("vpn connect %s: unit inactive after settle", p.Name)
	default:
		c.mu.Lock()
		c.active = nil
		c.mu.Unlock()
		c.setStatus(StatusError)
		progress("VPN failed: " + p.Name)
		return errors.Errorf("vpn connect %s: unit state indeterminate", p.Name)
	}
}

// Disconnect tears down the active tunnel. silent skips progress frames.
func (c *Controller) Disconnect(ctx context.Context, progress func(string)) error {
	c.mu.Lock()
	cur := c.active
	c.mu.Unlock()
	if cur == nil {
		c.setStatus(StatusOff)
		return nil
	}
	return c.disconnect(ctx, cur, progress, false)
}

// disconnect always clears the active profile; health disagreement
// after settle is logged, not retried.
func (c *Controller) disconnect(ctx context.Context, p *Profile, progress func(string), suppressSideEffects bool) error {
	if progress == nil {
		progress = func(string) {}
	}
	if !suppressSideEffects {
		c.setStatus(StatusDisconnecting)
		progress("Disconnecting " + p.Name + "...")
	}
	c.Log.Infof("vpn: disconnect %s unit=%s", p.Name, p.Unit())
	err := sysd.Stop(ctx, c.Shell, p.Unit())
	c.sleep(c.Config.DisconnectSettle)
	if h := c.Health(ctx, p); h != sysd.HealthInactive {
		c.Log.Infof("vpn: disconnect %s: unit still %s after settle", p.Name, h.String())
	}
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
	if !suppressSideEffects {
		c.setStatus(StatusOff)
		progress("VPN off")
		if c.OnEgressChange != nil {
			c.OnEgressChange()
		}
	}
	if err != nil {
		return errors.Annotatef(err, "vpn disconnect %s", p.Name)
	}
	return nil
}

// XXX_testClock replaces settle sleeps in tests.
func (c *Controller) XXX_testClock(sleep func(time.Duration)) { c.sleep = sleep }

// XXX_testProfiles replaces the loaded profile list in tests.
func (c *Controller) XXX_testProfiles(ps []Profile) {
	c.mu.Lock()
	c.profiles = ps
	c.mu.Unlock()
}
