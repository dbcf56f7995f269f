package systemd

import (
	"os"
	"path"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

const (
	// UnitsName is the registry name of the unit file watcher
	UnitsName = "systemd-units"
	// Name is the registry name of the DEBIAN.yml directives
	Name = "systemd"
)

// Units reacts to staged unit files
type Units struct {
	module.Base
}

// NewUnits creates the unit file watcher for one build
func NewUnits(*module.Env) module.Module {
	return &Units{Base: module.NewBase(UnitsName)}
}

func (m *Units) FileWritten(remote, local string) error {
	if path.Dir(remote) != UnitDir {
		return nil
	}
	m.Ledger().AddTrigger(DaemonReload, true)

	data, err := os.ReadFile(local)
	if err != nil {
		if os.IsNotExist(err) {
			// dangling symlink, e.g. a unit masked to /dev/null elsewhere
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read unit %s", remote)
	}
	if strings.Contains(string(data), "[Install]") {
		return Manage(m.Ledger(), path.Base(remote))
	}
	return nil
}

// Directives handles the reload and services keys
type Directives struct {
	module.Base
}

// New creates the directives module for one build
func New(*module.Env) module.Module {
	return &Directives{Base: module.NewBase(Name)}
}

func (m *Directives) ConfigHandlers() []router.Handler {
	return []router.Handler{
		{
			Document: router.KindDebian,
			Keys:     []string{"reload"},
			Handle: func(_ string, fields router.Fields) error {
				var units []string
				if err := fields.Decode("reload", &units); err != nil {
					return err
				}
				for _, u := range units {
					Reload(m.Ledger(), u)
				}
				return nil
			},
		},
		{
			Document: router.KindDebian,
			Keys:     []string{"services"},
			Handle: func(_ string, fields router.Fields) error {
				var units []string
				if err := fields.Decode("services", &units); err != nil {
					return err
				}
				for _, u := range units {
					if err := Manage(m.Ledger(), u); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
