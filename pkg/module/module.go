// Package module defines the contract feature modules implement to
// contribute files, metadata and lifecycle actions to a package build.
//
// A build creates one instance of every registered module through its
// Factory. Hooks are optional: modules embed Base and override only what
// they need.
//
//   - ConfigHandlers declares which keys of which configuration documents
//     the module wants; the router only calls a handler if at least one of
//     its keys is present.
//   - HandleFile and HandleSymlink are offered every regular file and
//     symlink of the unit, in walk order.
//   - FileWritten observes every file any module stages, including the
//     module's own writes.
//   - HandleFragment receives maintainer script fragments.
package module

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Module is implemented by every feature module
type Module interface {
	// Name returns the unique name of this module
	Name() string

	// ConfigHandlers returns the document handlers in invocation order
	ConfigHandlers() []router.Handler

	// HandleFile is offered every regular file. The reader is rewound
	// before the next module sees it.
	HandleFile(path string, r io.ReadSeeker) error

	// HandleSymlink is offered every symlink with its literal target
	HandleSymlink(path, target string) error

	// FileWritten is called once for every staged output of any module
	FileWritten(remote, local string) error

	// HandleFragment receives the content of a maintainer script fragment
	HandleFragment(fragment Fragment, text string) error

	// Ledger returns the module's action record
	Ledger() *ledger.Ledger

	// Control returns the module's metadata contribution
	Control() *control.Fragment
}

// Factory creates a module instance for one build
type Factory func(env *Env) Module

// Settings are the site-wide values modules read from configuration
type Settings struct {
	Maintainer   string
	Section      string
	Architecture string

	// LAN lists the address ranges treated as internal by the firewall
	LAN         []string
	UPnPHost    string
	UPnPGateway string
}

// Env is what a module is constructed with
type Env struct {
	// Unit is the unit name, which is also the package name
	Unit string
	// Source is the unit directory
	Source string
	// Target is the staging root
	Target string

	Stager   *Stager
	Settings Settings
	HTTP     *http.Client
	Log      zerolog.Logger
}

// Fragment names a maintainer script fragment file of a unit
type Fragment string

const (
	FragmentPreinst  Fragment = "preinst"
	FragmentPostinst Fragment = "postinst"
	FragmentPrerm    Fragment = "prerm"
	FragmentPostrm   Fragment = "postrm"
	FragmentPurge    Fragment = "purge"
)

// FragmentFiles maps the unit-root file names to their fragment
var FragmentFiles = map[string]Fragment{
	"preinst.sh":  FragmentPreinst,
	"postinst.sh": FragmentPostinst,
	"prerm.sh":    FragmentPrerm,
	"postrm.sh":   FragmentPostrm,
	"purge.sh":    FragmentPurge,
}

// Base implements every hook as a no-op and owns the ledger and control
// fragment. Modules embed it.
type Base struct {
	name    string
	ledger  *ledger.Ledger
	control *control.Fragment
}

// NewBase creates the embedded state of a module called name
func NewBase(name string) Base {
	return Base{
		name:    name,
		ledger:  ledger.New(name),
		control: control.NewFragment(),
	}
}

func (b *Base) Name() string { return b.name }
func (b *Base) ConfigHandlers() []router.Handler { return nil }
func (b *Base) HandleFile(string, io.ReadSeeker) error { return nil }
func (b *Base) HandleSymlink(string, string) error { return nil }
func (b *Base) FileWritten(string, string) error { return nil }
func (b *Base) HandleFragment(Fragment, string) error { return nil }
func (b *Base) Ledger() *ledger.Ledger { return b.ledger }
func (b *Base) Control() *control.Fragment { return b.control }
