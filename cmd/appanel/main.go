// appanel is a touch e-paper status panel for a RaspAP router: it
// shows uplink/hotspot/VPN state and toggles them on tap.
package main

import (
	"flag"
	"log"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/appanel/internal/state"
	state_new "github.com/temoto/appanel/internal/state/new"
	"github.com/temoto/appanel/internal/tele"
	"github.com/temoto/appanel/internal/ui"
	"github.com/temoto/appanel/log2"
)

// set at build time with -ldflags "-X main.BuildVersion=..."
var BuildVersion string = "unknown"

func main() {
	flagConfig := flag.String("config", "/etc/appanel/appanel.hcl", "config file")
	flagVersion := flag.Bool("version", false, "print build version and exit")
	flag.Parse()

	if *flagVersion {
		log.Printf("appanel %s", BuildVersion)
		return
	}

	logger := log2.NewStderr(log2.LDebug)
	if sdnotify("READY=0\nSTATUS=starting\n") {
		// under systemd assume journal, remove timestamp
		logger.SetFlags(log2.LServiceFlags)
	} else {
		logger.SetFlags(log2.LInteractiveFlags)
	}
	logger.Infof("appanel version=%s", BuildVersion)

	config := state.MustReadConfig(logger, state.NewOsFullReader(""), *flagConfig)
	ctx, g := state_new.NewContext(logger, tele.New(config.Tele))
	g.BuildVersion = BuildVersion
	g.MustInit(ctx, config)

	u, err := ui.NewUI(ctx)
	if err != nil {
		g.Stop()
		logger.Fatal(errors.ErrorStack(err))
	}

	defer func() {
		if x := recover(); x != nil {
			g.Error(errors.Errorf("panic: %v", x))
			g.Stop()
			panic(x)
		}
	}()

	sdnotify(daemon.SdNotifyReady)
	logger.Debugf("init complete, running")
	u.Loop(ctx)
	g.Stop()
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
