// Package users creates the system users a unit runs as.
package users

import (
	"fmt"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "users"

// noHome is the home of users that do not need one
const noHome = "/dev/null"

// User is one entry of the users key
type User struct {
	Name string `yaml:"name"`
	Home string `yaml:"home"`
}

// Module adds adduser/deluser actions
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
		Keys:     []string{"users"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(docPath string, fields router.Fields) error {
	var users []User
	if err := fields.Decode("users", &users); err != nil {
		return err
	}

	for _, u := range users {
		if u.Name == "" {
			return errors.Newf(errors.ErrConfigValid, "%s: user without a name", docPath).
				WithDetail("key", "users")
		}
		if u.Home == "" {
			u.Home = noHome
		}

		add := fmt.Sprintf("adduser --system --group %s --home %s", shell.Quote(u.Name), shell.Quote(u.Home))
		del := "deluser " + shell.Quote(u.Name)
		if err := m.Ledger().AddAction(add, del, ledger.Before, ledger.Early); err != nil {
			return err
		}

		if u.Home != noHome {
			m.Ledger().AddPurge("rm -r " + shell.Quote(u.Home))
		}
	}
	return nil
}
