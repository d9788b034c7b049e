package vpn

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/appanel/log2"
)

const (
	ProtocolOpenVPN   = "openvpn"
	ProtocolWireguard = "wireguard"
)

// Profiles are keyed blocks: profile "HomeVPN" { server = "..." }.
type Profile struct {
	Name     string `hcl:"name,key"`
	Server   string `hcl:"server"`
	Protocol string `hcl:"protocol"`
}

type profilesFile struct {
	Profiles []Profile `hcl:"profile"`
}

// Key identifies the tunnel regardless of display name.
func (p *Profile) Key() string {
	return sanitize(p.Server) + "-" + sanitize(p.Protocol)
}

// Unit is the systemd instance that carries this tunnel.
func (p *Profile) Unit() string {
	if strings.EqualFold(p.Protocol, ProtocolWireguard) {
		return "wg-quick@" + sanitize(p.Name)
	}
	return "openvpn-client@" + sanitize(p.Name)
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '-'
	}, s)
}

// LoadProfiles reads the ordered profile list. Absent or malformed file
// degrades to an empty list so the menu can show "no profiles".
func LoadProfiles(log *log2.Log, path string) []Profile {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("vpn: profiles read %s: %v", path, err)
		}
		return nil
	}
	ps, err := ParseProfiles(b)
	if err != nil {
		log.Errorf("vpn: profiles parse %s: %v", path, err)
		return nil
	}
	return ps
}

func ParseProfiles(b []byte) ([]Profile, error) {
	var pf profilesFile
	if err := hcl.Unmarshal(b, &pf); err != nil {
		return nil, errors.Annotate(err, "vpn profiles")
	}
	for i := range pf.Profiles {
		p := &pf.Profiles[i]
		if p.Name == "" || p.Server == "" {
			return nil, errors.Errorf("vpn profile %d: name and server are required", i)
		}
		if p.Protocol == "" {
			p.Protocol = ProtocolOpenVPN
		}
	}
	return pf.Profiles, nil
}
