// Package patches applies *.patch files shipped by a unit to files owned by
// other packages.
//
// The original file is diverted to <file>.ucf-dist, copied back and patched
// in place, after which take-control-of hands it to the unit.
package patches

import (
	"fmt"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "patches"

// Suffix marks a staged file as a patch
const Suffix = ".patch"

// Module patches diverted originals
type Module struct {
	module.Base
	unit string
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{Base: module.NewBase(Name), unit: env.Unit}
}

func (m *Module) FileWritten(remote, _ string) error {
	original, ok := strings.CutSuffix(remote, Suffix)
	if !ok {
		return nil
	}

	o := shell.Quote(original)
	dist := shell.Quote(original + ".ucf-dist")

	apply := fmt.Sprintf(`dpkg-divert --rename --divert %[1]s --add %[2]s
cp -a %[1]s %[2]s
patch --forward %[2]s %[3]s
take-control-of %[4]s %[2]s`, dist, o, shell.Quote(remote), shell.Quote(m.unit))
	if err := m.Ledger().AddAction(apply, "", ledger.After, ledger.Early); err != nil {
		return err
	}

	restore := fmt.Sprintf("dpkg-divert --rename --divert %s --remove %s", dist, o)
	return m.Ledger().AddRemoval(restore, "", ledger.After, ledger.Early)
}
