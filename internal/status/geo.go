package status

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/juju/errors"
)

// geoReply is the subset of the ipapi.co JSON document we read.
type geoReply struct {
	IP          string `json:"ip"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

// fetchGeo looks up egress IP and coarse location. Errors degrade to
// the cache sentinel upstream, never to the panel crashing.
func (s *Service) fetchGeo(ctx context.Context) (geoReply, error) {
	var g geoReply
	tctx, cancel := context.WithTimeout(ctx, s.Config.GeoTimeout)
	defer cancel()
	req, err := http.NewRequest(http.MethodGet, s.Config.GeoURL, nil)
	if err != nil {
		return g, errors.Annotate(err, "geo request")
	}
	req = req.WithContext(tctx)
	resp, err := s.hc.Do(req)
	if err != nil {
		return g, errors.Annotate(err, "geo fetch")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return g, errors.Errorf("geo fetch: http status=%d", resp.StatusCode)
	}
	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return g, errors.Annotate(err, "geo read")
	}
	if err := json.Unmarshal(b, &g); err != nil {
		return g, errors.Annotate(err, "geo parse")
	}
	if g.IP == "" {
		return g, errors.Errorf("geo parse: no ip in reply")
	}
	return g, nil
}
