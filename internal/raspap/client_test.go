package raspap_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/appanel/helpers"
	"github.com/temoto/appanel/internal/raspap"
	"github.com/temoto/appanel/log2"
)

func testClient(t testing.TB, m *helpers.MockHTTP) *raspap.Client {
	return raspap.NewClient(log2.NewTest(t, log2.LDebug), "http://panel.test", "secret", m)
}

func TestClientNoKey(t *testing.T) {
	t.Parallel()

	c := raspap.NewClient(log2.NewTest(t, log2.LDebug), "", "", nil)
	assert.False(t, c.Available())
	_, err := c.System(context.Background())
	assert.Error(t, err)
}

func TestClientSystem(t *testing.T) {
	t.Parallel()

	m := &helpers.MockHTTP{Fun: func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "secret", req.Header.Get("access_token"))
		assert.Equal(t, "/system", req.URL.Path)
		return (&helpers.MockHTTP{Body: []byte(`{"hostapdStatus":1}`)}).RoundTrip(req)
	}}
	c := testClient(t, m)
	st, err := c.System(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.HostapdStatus)
}

func TestClientAPMissingSSID(t *testing.T) {
	t.Parallel()

	c := testClient(t, &helpers.MockHTTP{Body: []byte(`{"interface":"wlan1"}`)})
	_, err := c.AP(context.Background())
	assert.Error(t, err)
}

func TestClientClients(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		expect int
		ok     bool
	}{
		{"list", `{"active_clients":[{},{},{}],"active_clients_amount":5}`, 3, true},
		{"amount-only", `{"active_clients_amount":2}`, 2, true},
		{"empty-list", `{"active_clients":[]}`, 0, true},
		{"missing", `{}`, 0, false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			cl := testClient(t, &helpers.MockHTTP{Body: []byte(c.body)})
			n, err := cl.Clients(context.Background(), "wlan1")
			if c.ok {
				require.NoError(t, err)
				assert.Equal(t, c.expect, n)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestClientHTTPStatus(t *testing.T) {
	t.Parallel()

	c := testClient(t, &helpers.MockHTTP{Header: []byte("HTTP/1.0 500 Internal Server Error\r\n\r\n")})
	_, err := c.System(context.Background())
	assert.Error(t, err)
}
