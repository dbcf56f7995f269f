// Package munin restarts munin-node when plugins change.
package munin

import (
	"path"

	"github.com/scramjet-deb/scramjet/pkg/module"
)

// Name is the registry name of the module
const Name = "munin"

const (
	pluginDir = "/usr/share/munin/plugins"
	// Restart is the trigger picking up new plugins
	Restart = "systemctl try-restart munin-node"
)

type Module struct {
	module.Base
}

// New creates the module for one build
func New(*module.Env) module.Module {
	return &Module{Base: module.NewBase(Name)}
}

func (m *Module) FileWritten(remote, _ string) error {
	if path.Dir(remote) == pluginDir {
		m.Ledger().AddTrigger(Restart, false)
	}
	return nil
}
