// Package diversions diverts files owned by other packages out of the way
// before they are overwritten, and restores them on removal.
package diversions

import (
	"fmt"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "diversions"

// Module adds a divert/undivert pair for every staged file
type Module struct {
	module.Base
}

// New creates the module for one build
func New(*module.Env) module.Module {
	return &Module{Base: module.NewBase(Name)}
}

func (m *Module) FileWritten(remote, _ string) error {
	path := shell.Quote(remote)
	dist := shell.Quote(remote + ".ucf-dist")
	pending := shell.Quote(remote + ".dpkg-new")

	divert := fmt.Sprintf(`if [[ -f %s ]] || [[ -f %s ]] || [[ -f %s ]]; then
    dpkg-divert --rename --divert %s --add %s
fi`, path, pending, dist, dist, path)
	undivert := fmt.Sprintf("dpkg-divert --quiet --rename --divert %s --remove %s", dist, path)

	return m.Ledger().AddAction(divert, undivert, ledger.Before, ledger.Early)
}
