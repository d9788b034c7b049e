package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/appanel/hardware/panel"
	"github.com/temoto/appanel/hardware/touch"
	"github.com/temoto/appanel/helpers"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/raspap"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/internal/status"
	"github.com/temoto/appanel/internal/tele"
	"github.com/temoto/appanel/internal/vpn"
	"github.com/temoto/appanel/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Log          *log2.Log
	Tele         tele.Teler

	Hardware struct {
		// Panel may only be preset by NewTestContext; production
		// code goes through MustPanel.
		Panel panel.Panel
		Touch touch.Pointer
	}

	// Shell and API may be preset before Init (tests, panel-cli).
	Shell shell.Runner
	API   *raspap.Client

	Net    *network.Controller
	VPN    *vpn.Controller
	Status *status.Service

	initPanelOnce sync.Once
	initTouchOnce sync.Once
}

const ContextKey = "run/state-global"

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	// Tele is the remote error reporting mechanism, init before the rest.
	if g.Tele == nil {
		g.Tele = tele.New(cfg.Tele)
	}
	if err := g.Tele.Init(ctx, g.Log, cfg.Tele); err != nil {
		return errors.Annotate(err, "tele init")
	}

	if g.Shell == nil {
		g.Shell = shell.NewExec(g.Log)
	}
	if g.API == nil {
		g.API = raspap.NewClientFromEnv(g.Log)
	}
	if g.API.Available() {
		g.Log.Infof("raspap api enabled")
	} else {
		g.Log.Infof("raspap api key not set, command fallbacks only")
	}

	g.Net = network.NewController(g.Log, g.Shell, g.API, &cfg.Net)
	g.VPN = vpn.NewController(g.Log, g.Shell, &cfg.VPN)
	g.Status = status.NewService(g.Log, g.Shell, g.Net, &cfg.Status, nil)
	g.VPN.OnEgressChange = g.Status.ForceRefreshGeo
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Errorf(errors.ErrorStack(err))
		g.Tele.Error(err)
	}
}

// Stop tears down hardware and lifecycle. Safe to call more than once.
func (g *Global) Stop() {
	g.Alive.Stop()
	if p := g.Hardware.Panel; p != nil {
		if err := p.Sleep(); err != nil {
			g.Log.Errorf("panel sleep: %v", err)
		}
	}
	if tp := g.Hardware.Touch; tp != nil {
		if err := tp.Close(); err != nil {
			g.Log.Errorf("touch close: %v", err)
		}
	}
	g.Tele.Close()
}

func recoverFatal(f helpers.Fataler) {
	if x := recover(); x != nil {
		f.Fatal(x)
	}
}
