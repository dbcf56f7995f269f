// Package secure restricts listed paths to their owning user after install.
package secure

import (
	"fmt"
	"sort"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "secure"

// Module turns `secure: {user: [paths]}` into postinst chmod/chown actions
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
		Keys:     []string{"secure"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(_ string, fields router.Fields) error {
	var secure map[string][]string
	if err := fields.Decode("secure", &secure); err != nil {
		return err
	}

	users := make([]string, 0, len(secure))
	for user := range secure {
		users = append(users, user)
	}
	sort.Strings(users)

	for _, user := range users {
		for _, p := range secure[user] {
			script := fmt.Sprintf("chmod go-rwx %s\nchown %s %s",
				shell.Quote(p), shell.Quote(user+":"+user), shell.Quote(p))
			if err := m.Ledger().AddAction(script, "", ledger.After, ledger.Early); err != nil {
				return err
			}
		}
	}
	return nil
}
