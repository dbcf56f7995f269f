// Package config loads the scramjet tool configuration.
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/scramjet/config.toml or config.yaml
//  3. scramjet.toml in the units root, the parent directory of the units
//  4. SCRAMJET_<SECTION>_<KEY> environment variables
//  5. explicit overrides, usually from command line flags
//
// The merged tree is decoded into Config with mapstructure. Lists given as
// strings are split on commas, so SCRAMJET_NETWORK_LAN=10.0.0.0/8,fd00::/8
// works.
package config
