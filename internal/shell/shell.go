// Package shell executes system commands for the controllers.
// Output is captured text; failures degrade to empty string so status
// lookups never take the process down with them.
package shell

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/appanel/log2"
)

const DefaultTimeout = 15 * time.Second

type Runner interface {
	// Run returns trimmed stdout. err!=nil means non-zero exit,
	// timeout or spawn failure; returned text is "" then.
	Run(ctx context.Context, cmdline string) (string, error)
}

type Exec struct {
	Log     *log2.Log
	Timeout time.Duration
}

var _ Runner = new(Exec)

func NewExec(log *log2.Log) *Exec {
	return &Exec{Log: log, Timeout: DefaultTimeout}
}

func (e *Exec) Run(ctx context.Context, cmdline string) (string, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, "sh", "-c", cmdline) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		e.Log.Debugf("shell cmd=%q err=%v stderr=%q", cmdline, err, stderr)
		return "", errors.Annotatef(err, "shell cmd=%q", cmdline)
	}
	return strings.TrimSpace(string(out)), nil
}
