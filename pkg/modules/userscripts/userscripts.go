// Package userscripts adds the maintainer script fragments of a unit to
// their phase.
package userscripts

import (
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
)

// Name is the registry name of the module
const Name = "userscripts"

// Module handles preinst.sh, postinst.sh, prerm.sh, postrm.sh and purge.sh
type Module struct {
	module.Base
}

// New creates the module for one build
func New(*module.Env) module.Module {
	return &Module{Base: module.NewBase(Name)}
}

func (m *Module) HandleFragment(fragment module.Fragment, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	script := strings.TrimRight(text, "\n")
	l := m.Ledger()

	switch fragment {
	case module.FragmentPreinst:
		return l.AddAction(script, "", ledger.Before, ledger.Early)
	case module.FragmentPostinst:
		return l.AddAction(script, "", ledger.After, ledger.Early)
	case module.FragmentPrerm:
		return l.AddRemoval(script, "", ledger.Before, ledger.Early)
	case module.FragmentPostrm:
		return l.AddRemoval(script, "", ledger.After, ledger.Early)
	case module.FragmentPurge:
		l.AddPurge(script)
		return nil
	}
	return errors.Newf(errors.ErrPolicyViolation, "unknown script fragment %q", fragment)
}
