// Package pkgmanagers keeps pip and npm packages of a unit up to date with a
// daily systemd timer.
package pkgmanagers

import (
	"fmt"

	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/modules/systemd"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "pkgmanagers"

// Module handles the pip and npm keys
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
		Keys:     []string{"pip", "npm"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(_ string, fields router.Fields) error {
	var pip, npm []string
	if err := fields.Decode("pip", &pip); err != nil {
		return err
	}
	if err := fields.Decode("npm", &npm); err != nil {
		return err
	}

	description := fmt.Sprintf("update process for Python/Node packages of %q", m.unit)

	var exec []string
	if fields.Has("pip") {
		line, err := systemd.Command(append([]string{"/usr/bin/pip3", "install", "--upgrade"}, pip...)...)
		if err != nil {
			return err
		}
		exec = append(exec, "ExecStart="+line)
		m.Control().Add(control.PreDepends, "python3-pip")
	}
	if fields.Has("npm") {
		argv := []string{"/usr/bin/npm", "install", "--global", "--production"}
		for _, p := range npm {
			argv = append(argv, p+"@latest")
		}
		line, err := systemd.Command(argv...)
		if err != nil {
			return err
		}
		exec = append(exec, "ExecStart="+line)
		m.Control().Add(control.PreDepends, "npm")
	}

	timer := systemd.DailyTimer(description)
	service := systemd.OneshotService(description, exec...)
	if err := systemd.StageTimer(m.stager, m.unit, timer, service); err != nil {
		return err
	}

	start := "systemctl start " + shell.Quote(m.unit+".service")
	return m.Ledger().AddAction(start, "", ledger.After, ledger.Early)
}
