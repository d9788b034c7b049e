// Package sysd controls systemd units through the shell runner.
package sysd

import (
	"context"
	"fmt"

	"github.com/temoto/appanel/internal/shell"
)

type Health uint8

const (
	// empty is-active output: systemctl itself broke, unit state unknown.
	// Callers must treat this as an error, never as "off" — a stuck unit
	// would hide behind Off otherwise.
	HealthIndeterminate Health = iota
	HealthActive
	HealthInactive
)

func (h Health) String() string {
	switch h {
	case HealthActive:
		return "active"
	case HealthInactive:
		return "inactive"
	}
	return "indeterminate"
}

// IsActive queries unit state. `|| true` keeps the non-zero exit of
// inactive units from being swallowed as empty output by the runner.
func IsActive(ctx context.Context, r shell.Runner, unit string) Health {
	out, err := r.Run(ctx, fmt.Sprintf("sudo systemctl is-active %s 2>/dev/null || true", unit))
	if err != nil || out == "" {
		return HealthIndeterminate
	}
	if out == "active" {
		return HealthActive
	}
	return HealthInactive
}

func Start(ctx context.Context, r shell.Runner, unit string) error {
	_, err := r.Run(ctx, "sudo systemctl start "+unit)
	return err
}

func Stop(ctx context.Context, r shell.Runner, unit string) error {
	_, err := r.Run(ctx, "sudo systemctl stop "+unit)
	return err
}

func Restart(ctx context.Context, r shell.Runner, unit string) error {
	_, err := r.Run(ctx, "sudo systemctl restart "+unit)
	return err
}

// TryRestart restarts the unit only if it is already running.
func TryRestart(ctx context.Context, r shell.Runner, unit string) error {
	_, err := r.Run(ctx, "sudo systemctl try-restart "+unit)
	return err
}
