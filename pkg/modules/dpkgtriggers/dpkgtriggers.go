// Package dpkgtriggers declares the dpkg triggers a package is interested in.
package dpkgtriggers

import (
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "dpkgtriggers"

// Module writes DEBIAN/triggers
type Module struct {
	module.Base
	stager *module.Stager
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{Base: module.NewBase(Name), stager: env.Stager}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"triggers"},
		Handle: func(_ string, fields router.Fields) error {
			var triggers []string
			if err := fields.Decode("triggers", &triggers); err != nil {
				return err
			}

			var sb strings.Builder
			for _, t := range triggers {
				sb.WriteString("interest " + t + "\n")
			}
			return m.stager.WriteControl("triggers", sb.String(), 0644)
		},
	}}
}
