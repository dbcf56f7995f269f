// Package firewall opens and blocks ports with ufw and forwards external
// ports through UPnP.
//
// Ports listed as internal are opened for every LAN range from settings.
// External ports are opened for everyone and forwarded by the UPnP gateway;
// a cron entry keeps the forwarding alive since routers drop idle mappings.
package firewall

import (
	"fmt"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Name is the registry name of the module
const Name = "firewall"

const (
	// cronPort is the local port upnpc binds for the periodic refresh
	cronPort = 1900
	// installPort is used during install so it does not race the cron job
	installPort = 1901
)

// Rules is the value of the firewall key
type Rules struct {
	Block    []string `yaml:"block"`
	Internal []string `yaml:"internal"`
	External []string `yaml:"external"`
}

// Module turns firewall rules into ufw and upnpc actions
type Module struct {
	module.Base
	unit     string
	stager   *module.Stager
	settings module.Settings
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{
		Base:     module.NewBase(Name),
		unit:     env.Unit,
		stager:   env.Stager,
		settings: env.Settings,
	}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"firewall"},
		Handle:   m.parse,
	}}
}

func (m *Module) parse(_ string, fields router.Fields) error {
	var rules Rules
	if err := fields.Decode("firewall", &rules); err != nil {
		return err
	}
	if err := m.checkSettings(rules); err != nil {
		return err
	}

	for _, port := range rules.Block {
		p := shell.Quote(port)
		if err := m.action("ufw deny out "+p, "ufw delete deny out "+p); err != nil {
			return err
		}
	}

	for _, port := range rules.Internal {
		var allow, remove []string
		for _, lan := range m.settings.LAN {
			rule := fmt.Sprintf("allow from %s to any port %s", shell.Quote(lan), shell.Quote(port))
			allow = append(allow, "ufw "+rule)
			remove = append(remove, "ufw delete "+rule)
		}
		if err := m.action(strings.Join(allow, "\n"), strings.Join(remove, "\n")); err != nil {
			return err
		}
	}

	if len(rules.External) > 0 {
		if err := m.external(rules.External); err != nil {
			return err
		}
	}

	if len(rules.Block) > 0 || len(rules.Internal) > 0 || len(rules.External) > 0 {
		m.Control().Add(control.PreDepends, "ufw")
	}
	if len(rules.External) > 0 {
		m.Control().Add(control.PreDepends, "miniupnpc")
	}
	return nil
}

// checkSettings rejects rules the network settings cannot express
func (m *Module) checkSettings(rules Rules) error {
	if len(rules.Internal) > 0 && len(m.settings.LAN) == 0 {
		return errors.New(errors.ErrConfigValid, "firewall.internal needs network.lan").
			WithDetail("unit", m.unit)
	}
	if len(rules.External) > 0 && (m.settings.UPnPHost == "" || m.settings.UPnPGateway == "") {
		return errors.New(errors.ErrConfigValid, "firewall.external needs network.upnp_host and network.upnp_gateway").
			WithDetail("unit", m.unit)
	}
	return nil
}

func (m *Module) external(ports []string) error {
	host := shell.Quote(m.settings.UPnPHost)
	var cron strings.Builder

	for _, port := range ports {
		p := shell.Quote(port)
		enable := func(local int) []string {
			return []string{
				fmt.Sprintf("upnpc -z %d -a %s %s %s tcp", local, host, p, p),
				fmt.Sprintf("upnpc -z %d -a %s %s %s udp", local, host, p, p),
			}
		}
		disable := []string{
			fmt.Sprintf("upnpc -z %d -d %s tcp", installPort, p),
			fmt.Sprintf("upnpc -z %d -d %s udp", installPort, p),
		}

		if err := m.action("ufw allow "+p, "ufw delete allow "+p); err != nil {
			return err
		}

		for _, code := range enable(cronPort) {
			cron.WriteString("* * * * * root " + code + " &> /dev/null\n")
		}

		if err := m.action(m.gatewayWrapped(enable(installPort)), m.gatewayWrapped(disable)); err != nil {
			return err
		}
	}

	return m.stager.Text("/etc/cron.d/"+m.unit, cron.String(), false)
}

// gatewayWrapped lets the gateway reach the install-time upnpc port while
// code runs
func (m *Module) gatewayWrapped(code []string) string {
	rule := fmt.Sprintf("allow from %s to any port %d", shell.Quote(m.settings.UPnPGateway), installPort)
	lines := append([]string{"ufw " + rule}, code...)
	lines = append(lines, "ufw delete "+rule)
	return strings.Join(lines, "\n")
}

// action registers a rule before install, undone after removal
func (m *Module) action(script, undo string) error {
	return m.Ledger().AddAction(script, undo, ledger.Before, ledger.Early)
}
