package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/appanel/helpers"
	"github.com/temoto/appanel/internal/network"
	"github.com/temoto/appanel/internal/status"
	"github.com/temoto/appanel/internal/tele"
	ui_config "github.com/temoto/appanel/internal/ui/config"
	"github.com/temoto/appanel/internal/vpn"
	"github.com/temoto/appanel/log2"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Hardware struct {
		Panel struct {
			FbDevice string `hcl:"fb_device"`
			Width    int    `hcl:"width"`
			Height   int    `hcl:"height"`
		} `hcl:"panel"`
		Touch struct {
			Enable   bool   `hcl:"enable"`
			Device   string `hcl:"device"`
			GpioChip string `hcl:"gpio_chip"`
			// IntLine <0 disables the interrupt gate, the input
			// device is then polled directly.
			IntLine int `hcl:"int_line"`
		} `hcl:"touch"`
	} `hcl:"hardware"`

	Net    network.Config   `hcl:"net"`
	VPN    vpn.Config       `hcl:"vpn"`
	Status status.Config    `hcl:"status"`
	UI     ui_config.Config `hcl:"ui"`
	Tele   tele.Config      `hcl:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

// Vars fills computed fields and defaults after unmarshal.
func (c *Config) Vars() {
	hw := &c.Hardware
	if hw.Panel.FbDevice == "" {
		hw.Panel.FbDevice = "/dev/fb0"
	}
	if hw.Panel.Width == 0 {
		hw.Panel.Width = 250
	}
	if hw.Panel.Height == 0 {
		hw.Panel.Height = 122
	}
	if hw.Touch.Device == "" {
		hw.Touch.Device = "/dev/input/event0"
	}
	c.Net.Vars()
	c.VPN.Vars()
	c.Status.Vars()
	c.UI.Vars()
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
			return
		}
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}
	c.Vars()
	return c, nil
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
