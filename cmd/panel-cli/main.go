// panel-cli is a developer console: it runs the full panel loop against
// a mock display so controllers can be exercised over a prompt instead
// of a touchscreen.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/appanel/hardware/panel"
	"github.com/temoto/appanel/hardware/touch"
	"github.com/temoto/appanel/helpers/cli"
	"github.com/temoto/appanel/internal/state"
	state_new "github.com/temoto/appanel/internal/state/new"
	"github.com/temoto/appanel/internal/tele"
	"github.com/temoto/appanel/internal/ui"
	"github.com/temoto/appanel/log2"
)

const usage = `commands:
status            print current display snapshot
screen            print active screen
touch <x> <y>     inject a raw touch sample
net               probe uplink status
ap                probe hotspot status
vpn               list vpn profiles
geo               query geolocation
dump              print last frame as ascii
help              this text`

var suggestions = []prompt.Suggest{
	{Text: "status", Description: "print current display snapshot"},
	{Text: "screen", Description: "print active screen"},
	{Text: "touch", Description: "touch <x> <y> inject raw sample"},
	{Text: "net", Description: "probe uplink status"},
	{Text: "ap", Description: "probe hotspot status"},
	{Text: "vpn", Description: "list vpn profiles"},
	{Text: "geo", Description: "query geolocation"},
	{Text: "dump", Description: "print last frame as ascii"},
	{Text: "help", Description: "print command list"},
}

func main() {
	flagConfig := flag.String("config", "/etc/appanel/appanel.hcl", "config file")
	flag.Parse()

	logger := log2.NewStderr(log2.LDebug)
	logger.SetFlags(log2.LInteractiveFlags)

	config := state.MustReadConfig(logger, state.NewOsFullReader(""), *flagConfig)
	ctx, g := state_new.NewContext(logger, tele.NewStub())

	mockPanel := panel.NewMock(image.Point{
		X: config.Hardware.Panel.Width,
		Y: config.Hardware.Panel.Height,
	})
	mockTouch := touch.NewMock()
	g.Hardware.Panel = mockPanel
	g.Hardware.Touch = mockTouch
	g.MustInit(ctx, config)

	u, err := ui.NewUI(ctx)
	if err != nil {
		logger.Fatal(errors.ErrorStack(err))
	}
	go u.Loop(ctx)
	defer g.Stop()

	cli.MainLoop("panel", func(line string) {
		execLine(ctx, g, u, mockPanel, mockTouch, line)
	}, func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
	})
}

func execLine(ctx context.Context, g *state.Global, u *ui.UI, mockPanel *panel.Mock, mockTouch *touch.Mock, line string) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}
	switch words[0] {
	case "status":
		snap := map[string]interface{}{
			"screen":  u.Screen().String(),
			"net":     g.Net.RefreshNetwork(ctx).String(),
			"hotspot": g.Net.RefreshHotspot(ctx).String(),
			"vpn":     g.VPN.Status().String(),
		}
		if a := g.VPN.Active(); a != nil {
			snap["vpn_profile"] = a.Name
		}
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(b))
	case "screen":
		fmt.Println(u.Screen().String())
	case "touch":
		if len(words) != 3 {
			fmt.Println("usage: touch <x> <y>")
			return
		}
		x, errX := strconv.Atoi(words[1])
		y, errY := strconv.Atoi(words[2])
		if errX != nil || errY != nil {
			fmt.Println("usage: touch <x> <y>")
			return
		}
		mockTouch.Push(touch.Sample{X: x, Y: y})
	case "net":
		fmt.Println(g.Net.RefreshNetwork(ctx).String())
	case "ap":
		fmt.Println(g.Net.RefreshHotspot(ctx).String())
	case "vpn":
		ps := g.VPN.Profiles()
		if len(ps) == 0 {
			fmt.Println("no profiles configured")
		}
		for _, p := range ps {
			mark := " "
			if a := g.VPN.Active(); a != nil && a.Key() == p.Key() {
				mark = "*"
			}
			fmt.Printf("%s %s %s %s\n", mark, p.Name, p.Server, p.Protocol)
		}
	case "geo":
		fmt.Printf("%s %s\n", g.Status.PublicIP(ctx), g.Status.Geo(ctx))
	case "dump":
		dumpFrame(mockPanel.Last())
	case "help":
		fmt.Println(usage)
	default:
		fmt.Printf("unknown command %q, try help\n", words[0])
	}
}

func dumpFrame(f *panel.Frame) {
	if f == nil {
		fmt.Println("no frame drawn yet")
		return
	}
	size := f.Size()
	var sb strings.Builder
	for y := 0; y < size.Y; y += 2 { // 2 rows per text line
		for x := 0; x < size.X; x++ {
			c := f.At(x, y).(color.Gray)
			if c.Y < 0x80 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}
