package status

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/temoto/appanel/helpers"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/raspap"
	"github.com/temoto/appanel/internal/shell"
	"github.com/temoto/appanel/log2"
)

func testService(t testing.TB, run *shell.Mock, geo *helpers.MockHTTP, conf Config) *Service {
	log := log2.NewTest(t, log2.LDebug)
	netConfig := &network.Config{}
	netConfig.Vars()
	api := raspap.NewClient(log, "", "", nil)
	net := network.NewController(log, run, api, netConfig)
	conf.GeoURL = "http://geo.test/json/"
	conf.Vars()
	return NewService(log, run, net, &conf, geo)
}

func TestCPUTemp(t *testing.T) {
	t.Parallel()
	run := shell.NewMock()
	run.Respond("cat /sys/class/thermal/thermal_zone0/temp", "48345")
	s := testService(t, run, nil, Config{})
	assert.Equal(t, "48.3", s.CPUTemp(context.Background()))
}

func TestCPUTempFailure(t *testing.T) {
	t.Parallel()
	run := shell.NewMock() // no canned response, every command errors
	s := testService(t, run, nil, Config{})
	assert.Equal(t, "", s.CPUTemp(context.Background()))
}

// Fresh values serve from cache without a fetch; an expired TTL
// triggers exactly one refetch.
func TestAPClientsTTL(t *testing.T) {
	t.Parallel()
	run := shell.NewMock()
	run.RespondPrefix("ip link show wlan1 up", "3: wlan1: <UP>")
	run.RespondPrefix("sudo iw dev wlan1 station dump", "3")
	s := testService(t, run, nil, Config{APTTLSec: 1})

	ctx := context.Background()
	assert.Equal(t, int32(3), s.APClients(ctx))
	n1 := len(run.CallsPrefix("sudo iw dev"))

	assert.Equal(t, int32(3), s.APClients(ctx))
	assert.Equal(t, n1, len(run.CallsPrefix("sudo iw dev")))

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, int32(3), s.APClients(ctx))
	assert.Equal(t, n1+1, len(run.CallsPrefix("sudo iw dev")))
}

func TestGeo(t *testing.T) {
	t.Parallel()
	geo := &helpers.MockHTTP{Body: []byte(`{"ip":"203.0.113.9","city":"Berlin","country_code":"DE"}`)}
	s := testService(t, shell.NewMock(), geo, Config{})

	ctx := context.Background()
	assert.Equal(t, "Berlin, DE", s.Geo(ctx))
	assert.Equal(t, "203.0.113.9", s.PublicIP(ctx))
}

func TestGeoFailure(t *testing.T) {
	t.Parallel()
	geo := &helpers.MockHTTP{Header: []byte("HTTP/1.0 503 Service Unavailable\r\n\r\n")}
	s := testService(t, shell.NewMock(), geo, Config{})

	ctx := context.Background()
	assert.Equal(t, Unknown, s.Geo(ctx))
	assert.Equal(t, Unknown, s.PublicIP(ctx))
}

func TestForceRefreshGeo(t *testing.T) {
	t.Parallel()
	calls := 0
	geo := &helpers.MockHTTP{Fun: func(req *http.Request) (*http.Response, error) {
		calls++
		return (&helpers.MockHTTP{Body: []byte(`{"ip":"203.0.113.9","city":"Berlin","country_code":"DE"}`)}).RoundTrip(req)
	}}
	s := testService(t, shell.NewMock(), geo, Config{})

	ctx := context.Background()
	s.Geo(ctx)
	s.Geo(ctx)
	assert.Equal(t, 1, calls)
	s.ForceRefreshGeo()
	s.Geo(ctx)
	assert.Equal(t, 2, calls)
}
