// Package catalog lists the bundled modules in the order a build runs them.
package catalog

import (
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/modules/aptsources"
	"github.com/scramjet-deb/scramjet/pkg/modules/controlfile"
	"github.com/scramjet-deb/scramjet/pkg/modules/copyfiles"
	"github.com/scramjet-deb/scramjet/pkg/modules/diversions"
	"github.com/scramjet-deb/scramjet/pkg/modules/dns"
	"github.com/scramjet-deb/scramjet/pkg/modules/dpkgtriggers"
	"github.com/scramjet-deb/scramjet/pkg/modules/firewall"
	"github.com/scramjet-deb/scramjet/pkg/modules/folders"
	"github.com/scramjet-deb/scramjet/pkg/modules/gitrepo"
	"github.com/scramjet-deb/scramjet/pkg/modules/gzipfiles"
	"github.com/scramjet-deb/scramjet/pkg/modules/munin"
	"github.com/scramjet-deb/scramjet/pkg/modules/patches"
	"github.com/scramjet-deb/scramjet/pkg/modules/pkgmanagers"
	"github.com/scramjet-deb/scramjet/pkg/modules/secure"
	"github.com/scramjet-deb/scramjet/pkg/modules/systemd"
	"github.com/scramjet-deb/scramjet/pkg/modules/users"
	"github.com/scramjet-deb/scramjet/pkg/modules/userscripts"
	"github.com/scramjet-deb/scramjet/pkg/modules/websites"
	"github.com/scramjet-deb/scramjet/pkg/registry"
)

// Entry describes a bundled module
type Entry struct {
	Name        string
	Description string
	Factory     module.Factory
}

// Entries returns every bundled module in build order
func Entries() []Entry {
	return []Entry{
		{controlfile.Name, "Package metadata from DEBIAN.yml", controlfile.New},
		{copyfiles.Name, "Stages unit files and symlinks", copyfiles.New},
		{secure.Name, "Restricts secured paths to their owner", secure.New},
		{dpkgtriggers.Name, "Declares dpkg trigger interests", dpkgtriggers.New},
		{gzipfiles.Name, "Stages gzip copies of selected files", gzipfiles.New},
		{diversions.Name, "Diverts files owned by other packages", diversions.New},
		{users.Name, "Creates system users", users.New},
		{pkgmanagers.Name, "Keeps pip and npm packages updated", pkgmanagers.New},
		{firewall.Name, "Opens and blocks ports with ufw and UPnP", firewall.New},
		{dns.Name, "Publishes Cloudflare DNS records", dns.New},
		{folders.Name, "Creates owned directories", folders.New},
		{aptsources.Name, "Adds APT repositories and keys", aptsources.New},
		{websites.Name, "Reloads web servers on site changes", websites.New},
		{patches.Name, "Applies patches to foreign files", patches.New},
		{munin.Name, "Restarts munin-node on plugin changes", munin.New},
		{userscripts.Name, "Adds maintainer script fragments", userscripts.New},
		{gitrepo.Name, "Maintains git checkouts from .git.yml", gitrepo.New},
		{systemd.UnitsName, "Reloads and manages staged systemd units", systemd.NewUnits},
		{systemd.Name, "Reloads and manages listed systemd units", systemd.New},
	}
}

// Default returns a registry holding every bundled module
func Default() registry.Registry[module.Factory] {
	reg := registry.New[module.Factory]()
	for _, e := range Entries() {
		registry.MustRegister(reg, e.Name, e.Factory)
	}
	return reg
}
