// Package controlfile contributes the unit-level package metadata from
// DEBIAN.yml.
package controlfile

import (
	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "control"

// Module fills Description, dependency and site fields
type Module struct {
	module.Base
	settings module.Settings
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{Base: module.NewBase(Name), settings: env.Settings}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"description", "apt", "depreciates"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(_ string, fields router.Fields) error {
	var (
		description string
		apt         []string
		depreciates []string
	)
	if err := fields.Decode("description", &description); err != nil {
		return err
	}
	if err := fields.Decode("apt", &apt); err != nil {
		return err
	}
	if err := fields.Decode("depreciates", &depreciates); err != nil {
		return err
	}

	c := m.Control()
	c.Add(control.Description, description)
	c.Add(control.Architecture, m.settings.Architecture)
	c.Add(control.Maintainer, m.settings.Maintainer)
	c.Add(control.Section, m.settings.Section)
	c.Add(control.Depends, apt...)

	// A package that supersedes others provides, conflicts with and
	// replaces all of them.
	c.Add(control.Provides, depreciates...)
	c.Add(control.Conflicts, depreciates...)
	c.Add(control.Replaces, depreciates...)
	return nil
}
