// Package websites reloads the web server whose enabled sites changed.
package websites

import (
	"path"

	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/modules/systemd"
)

// Name is the registry name of the module
const Name = "websites"

// servers maps a sites-enabled directory to the unit serving it
var servers = map[string]string{
	"/etc/nginx/sites-enabled":   "nginx.service",
	"/etc/apache2/sites-enabled": "apache2.service",
}

// Module adds reload triggers for nginx and apache2
type Module struct {
	module.Base
}

// New creates the module for one build
func New(*module.Env) module.Module {
	return &Module{Base: module.NewBase(Name)}
}

func (m *Module) FileWritten(remote, _ string) error {
	if unit, ok := servers[path.Dir(remote)]; ok {
		systemd.Reload(m.Ledger(), unit)
	}
	return nil
}
