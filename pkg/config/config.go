package config

import (
	"github.com/scramjet-deb/scramjet/pkg/archive"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
)

// Config is the effective tool configuration
type Config struct {
	Package PackageConfig `koanf:"package" toml:"package"`
	Build   BuildConfig   `koanf:"build" toml:"build"`
	Archive ArchiveConfig `koanf:"archive" toml:"archive"`
	Network NetworkConfig `koanf:"network" toml:"network"`
}

// PackageConfig holds the control fields shared by every unit
type PackageConfig struct {
	Maintainer   string `koanf:"maintainer" toml:"maintainer"`
	Section      string `koanf:"section" toml:"section"`
	Architecture string `koanf:"architecture" toml:"architecture"`
}

// BuildConfig controls script merging and where artifacts go
type BuildConfig struct {
	Ordering  string `koanf:"ordering" toml:"ordering"`
	OutputDir string `koanf:"output_dir" toml:"output_dir"`
}

// ArchiveConfig configures dpkg-deb
type ArchiveConfig struct {
	Tool           string `koanf:"tool" toml:"tool"`
	Compression    string `koanf:"compression" toml:"compression"`
	RootOwnerGroup bool   `koanf:"root_owner_group" toml:"root_owner_group"`
}

// NetworkConfig describes the local network for the firewall module
type NetworkConfig struct {
	LAN         []string `koanf:"lan" toml:"lan"`
	UPnPHost    string   `koanf:"upnp_host" toml:"upnp_host"`
	UPnPGateway string   `koanf:"upnp_gateway" toml:"upnp_gateway"`
}

// compressions are the dpkg-deb -Z values
var compressions = map[string]bool{
	"gzip": true,
	"xz":   true,
	"zstd": true,
	"none": true,
}

// Validate checks values that cannot be expressed by the types alone
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if !compressions[c.Archive.Compression] {
		return errors.Newf(errors.ErrConfigValid, "unsupported compression %q", c.Archive.Compression).
			WithDetail("key", "archive.compression")
	}
	if c.Package.Architecture == "" {
		return errors.New(errors.ErrConfigValid, "package.architecture must not be empty").
			WithDetail("key", "package.architecture")
	}
	return nil
}

// Policy returns the configured script ordering
func (c *Config) Policy() (ledger.Policy, error) {
	p, err := ledger.ParsePolicy(c.Build.Ordering)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigValid, "invalid build.ordering").
			WithDetail("key", "build.ordering")
	}
	return p, nil
}

// Settings returns the values handed to modules
func (c *Config) Settings() module.Settings {
	return module.Settings{
		Maintainer:   c.Package.Maintainer,
		Section:      c.Package.Section,
		Architecture: c.Package.Architecture,
		LAN:          append([]string(nil), c.Network.LAN...),
		UPnPHost:     c.Network.UPnPHost,
		UPnPGateway:  c.Network.UPnPGateway,
	}
}

// Archiver returns the dpkg-deb archiver described by the configuration
func (c *Config) Archiver() *archive.DpkgDeb {
	return archive.NewDpkgDeb(c.Archive.Tool, c.Archive.Compression, c.Build.OutputDir, c.Archive.RootOwnerGroup)
}
