// Package status serves system and network facts through TTL caches so
// the render loop can ask every cycle without hammering commands or
// the geolocation service.
package status

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/temoto/appanel/helpers/cacheval"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/log2"
)

const (
	Unknown         = "unknown"
	SentinelClients = -1
)

type Service struct {
	Log    *log2.Log
	Shell  shell.Runner
	Net    *network.Controller
	Config *Config

	hc *http.Client

	apSSID    cacheval.String
	apClients cacheval.Int32
	cpuTemp   cacheval.Float64
	cpuUsage  cacheval.String
	memUsage  cacheval.String
	uptime    cacheval.String
	publicIP  cacheval.String
	geo       cacheval.String
}

// rt=nil uses the default transport; tests inject helpers.MockHTTP.
func NewService(log *log2.Log, run shell.Runner, net *network.Controller, config *Config, rt http.RoundTripper) *Service {
	s := &Service{
		Log:    log,
		Shell:  run,
		Net:    net,
		Config: config,
		hc:     &http.Client{Timeout: config.GeoTimeout, Transport: rt},
	}
	s.apSSID.Init(config.APTTL, Unknown)
	s.apClients.Init(config.APTTL, SentinelClients)
	s.cpuTemp.Init(config.StatsTTL, math.NaN())
	s.cpuUsage.Init(config.StatsTTL, Unknown)
	s.memUsage.Init(config.StatsTTL, Unknown)
	s.uptime.Init(config.StatsTTL, Unknown)
	s.publicIP.Init(config.GeoTTL, Unknown)
	s.geo.Init(config.GeoTTL, Unknown)
	return s
}

func (s *Service) APSSID(ctx context.Context) string {
	return s.apSSID.GetOrUpdate(func() (string, error) {
		return s.Net.APSSID(ctx)
	})
}

// APClients returns the station count or SentinelClients when unknown.
func (s *Service) APClients(ctx context.Context) int32 {
	return s.apClients.GetOrUpdate(func() (int32, error) {
		n, err := s.Net.APClients(ctx)
		return int32(n), err
	})
}

// CPUTemp returns degrees Celsius formatted "48.3", or "" when unknown.
func (s *Service) CPUTemp(ctx context.Context) string {
	v := s.cpuTemp.GetOrUpdate(func() (float64, error) {
		out, err := s.Shell.Run(ctx, "cat "+s.Config.ThermalZone)
		if err != nil {
			return 0, err
		}
		milli, err := strconv.Atoi(strings.TrimSpace(out))
		if err != nil {
			return 0, err
		}
		return float64(milli) / 1000, nil
	})
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.1f", v)
}

// CPUUsage returns percent busy formatted by the fetch command.
func (s *Service) CPUUsage(ctx context.Context) string {
	return s.cpuUsage.GetOrUpdate(func() (string, error) {
		return s.Shell.Run(ctx, `top -bn1 | grep "Cpu(s)" | awk '{printf "%.0f%%", $2 + $4}'`)
	})
}

func (s *Service) MemUsage(ctx context.Context) string {
	return s.memUsage.GetOrUpdate(func() (string, error) {
		return s.Shell.Run(ctx, `free -m | awk 'NR==2{printf "%d/%dMB", $3, $2}'`)
	})
}

func (s *Service) Uptime(ctx context.Context) string {
	return s.uptime.GetOrUpdate(func() (string, error) {
		return s.Shell.Run(ctx, "uptime -p | sed 's/^up //'")
	})
}

// PublicIP returns the egress address as the geolocation service saw it.
func (s *Service) PublicIP(ctx context.Context) string {
	s.Geo(ctx)
	return s.publicIP.Get()
}

// Geo returns "City, CC" or Unknown. One fetch fills both geo caches.
func (s *Service) Geo(ctx context.Context) string {
	return s.geo.GetOrUpdate(func() (string, error) {
		g, err := s.fetchGeo(ctx)
		if err != nil {
			s.Log.Debugf("status: geo: %v", err)
			s.publicIP.Set(Unknown)
			return "", err
		}
		s.publicIP.Set(g.IP)
		switch {
		case g.City != "" && g.CountryCode != "":
			return g.City + ", " + g.CountryCode, nil
		case g.City != "":
			return g.City, nil
		case g.CountryCode != "":
			return g.CountryCode, nil
		}
		return Unknown, nil
	})
}

// ForceRefreshGeo marks geolocation stale. Called after VPN transitions
// since the egress path likely changed.
func (s *Service) ForceRefreshGeo() {
	s.geo.Invalidate()
	s.publicIP.Invalidate()
}
