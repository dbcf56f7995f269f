// Package folders creates directories owned by a user on install.
package folders

import (
	"fmt"
	"path"
	"sort"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "folders"

// Module handles `folders: {user: [paths]}`
type Module struct {
	module.Base
}

// New creates the module for one build
func New(*module.Env) module.Module {
	return &Module{Base: module.NewBase(Name)}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"folders"},
		Handle: func(_ string, fields router.Fields) error {
			var folders map[string][]string
			if err := fields.Decode("folders", &folders); err != nil {
				return err
			}

			owners := make([]string, 0, len(folders))
			for owner := range folders {
				owners = append(owners, owner)
			}
			sort.Strings(owners)

			for _, owner := range owners {
				for _, dir := range folders[owner] {
					if err := m.manage(owner, dir); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}}
}

// manage creates dir before install and removes it once empty after
// removal. Purging deletes its content.
func (m *Module) manage(owner, dir string) error {
	d := shell.Quote(dir)

	create := fmt.Sprintf("mkdir -p %s\nchown %s %s", d, shell.Quote(owner+":"+owner), d)
	if err := m.Ledger().AddAction(create, "rmdir -p "+d, ledger.Before, ledger.Early); err != nil {
		return err
	}

	m.Ledger().AddPurge(fmt.Sprintf(`if [ -e %s ]; then
    rm -r %s
    rmdir -p %s
fi`, d, d, shell.Quote(path.Dir(dir))))
	return nil
}
