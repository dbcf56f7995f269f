// Package dns publishes Cloudflare DNS records for the dynamic DNS updater.
package dns

import (
	"encoding/json"
	"io"
	"path"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "dns"

const (
	// RecordsDir holds one record file per unit
	RecordsDir = "/etc/cloudflare/records"
	// Restart is the trigger rerunning the updater
	Restart = "systemctl restart ddns.service"

	sitesEnabled = "/etc/nginx/sites-enabled"
)

// Module writes the cloudflare key as JSON and restarts the updater when
// records or sites change
type Module struct {
	module.Base
	unit   string
	stager *module.Stager
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{Base: module.NewBase(Name), unit: env.Unit, stager: env.Stager}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"cloudflare"},
		Handle: func(_ string, fields router.Fields) error {
			records := fields["cloudflare"]
			return m.stager.Create(RecordsDir+"/"+m.unit+".json", module.WithMode(0644), func(w io.Writer) error {
				if err := json.NewEncoder(w).Encode(records); err != nil {
					return errors.Wrap(err, errors.ErrConfigValid, "cloudflare records cannot be encoded as JSON")
				}
				return nil
			})
		},
	}}
}

func (m *Module) FileWritten(remote, _ string) error {
	switch path.Dir(remote) {
	case sitesEnabled, RecordsDir:
		m.Ledger().AddTrigger(Restart, false)
	}
	return nil
}
