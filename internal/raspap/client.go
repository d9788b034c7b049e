// Package raspap is the client for the RaspAP status service.
// Absent API key means the service is unavailable and every controller
// falls back to its shell command path.
package raspap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/appanel/log2"
)

const (
	EnvAPIKey  = "RASPAP_API_KEY"
	EnvBaseURL = "RASPAP_API_BASE_URL"

	DefaultBaseURL = "http://localhost:8081"
	DefaultTimeout = 5 * time.Second
)

type Client struct {
	log  *log2.Log
	base string
	key  string
	hc   *http.Client
}

// NewClient with rt=nil uses the default transport. Tests pass
// helpers.MockHTTP.
func NewClient(log *log2.Log, baseURL, key string, rt http.RoundTripper) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		log:  log,
		base: strings.TrimRight(baseURL, "/"),
		key:  key,
		hc:   &http.Client{Timeout: DefaultTimeout, Transport: rt},
	}
}

// NewClientFromEnv reads the key and base URL from environment.
func NewClientFromEnv(log *log2.Log) *Client {
	key := os.Getenv(EnvAPIKey)
	base := os.Getenv(EnvBaseURL)
	if key == "" {
		log.Infof("raspap: %s not set, API disabled, command fallbacks only", EnvAPIKey)
	} else {
		log.Infof("raspap: API key loaded, base=%s", base)
	}
	return NewClient(log, base, key, nil)
}

func (c *Client) Available() bool { return c != nil && c.key != "" }

func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if !c.Available() {
		return errors.Errorf("raspap API not configured")
	}
	url := c.base + "/" + strings.TrimLeft(endpoint, "/")
	var rbody *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return errors.Annotatef(err, "raspap %s %s marshal", method, endpoint)
		}
		rbody = bytes.NewReader(bs)
	} else {
		rbody = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rbody)
	if err != nil {
		return errors.Annotatef(err, "raspap %s %s", method, endpoint)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("access_token", c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Annotatef(err, "raspap %s %s", method, endpoint)
	}
	defer resp.Body.Close()
	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Annotatef(err, "raspap %s %s read", method, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("raspap %s %s status=%d body=%s", method, endpoint, resp.StatusCode, firstN(string(bs), 100))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bs) == 0 {
		return nil
	}
	if err = json.Unmarshal(bs, out); err != nil {
		return errors.Annotatef(err, "raspap %s %s decode body=%s", method, endpoint, firstN(string(bs), 100))
	}
	return nil
}

func (c *Client) Get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

type SystemStatus struct {
	HostapdStatus int `json:"hostapdStatus"`
}

func (c *Client) System(ctx context.Context) (*SystemStatus, error) {
	st := new(SystemStatus)
	if err := c.Get(ctx, "system", st); err != nil {
		return nil, err
	}
	return st, nil
}

type APDetails struct {
	Interface string `json:"interface"`
	SSID      string `json:"ssid"`
}

func (c *Client) AP(ctx context.Context) (*APDetails, error) {
	d := new(APDetails)
	if err := c.Get(ctx, "ap", d); err != nil {
		return nil, err
	}
	if d.SSID == "" {
		return nil, errors.Errorf("raspap /ap response missing ssid")
	}
	return d, nil
}

type clientList struct {
	ActiveClients       []json.RawMessage `json:"active_clients"`
	ActiveClientsAmount *int              `json:"active_clients_amount"`
}

// Clients returns the AP station count for iface.
// List length wins over the declared amount when both are present.
func (c *Client) Clients(ctx context.Context, iface string) (int, error) {
	cl := new(clientList)
	if err := c.Get(ctx, fmt.Sprintf("clients/%s", iface), cl); err != nil {
		return 0, err
	}
	if cl.ActiveClients != nil {
		n := len(cl.ActiveClients)
		if cl.ActiveClientsAmount != nil && *cl.ActiveClientsAmount != n {
			c.log.Debugf("raspap clients/%s amount=%d list=%d, using list", iface, *cl.ActiveClientsAmount, n)
		}
		return n, nil
	}
	if cl.ActiveClientsAmount != nil {
		return *cl.ActiveClientsAmount, nil
	}
	return 0, errors.Errorf("raspap clients/%s response missing client data", iface)
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
