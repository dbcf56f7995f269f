package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/logging"
)

const (
	// EnvPrefix starts every environment override
	EnvPrefix = "SCRAMJET_"
	// RootFile is the configuration file looked up in the units root
	RootFile = "scramjet.toml"
)

// userFiles are searched, in order, below the XDG config directories
var userFiles = []string{"scramjet/config.toml", "scramjet/config.yaml", "scramjet/config.yml"}

// Options select the layers Load reads
type Options struct {
	// UnitsRoot is the directory holding the units; RootFile is read from it
	UnitsRoot string
	// UserFile replaces the XDG search when set and must exist
	UserFile string
	// SkipUserConfig ignores the user file entirely
	SkipUserConfig bool
	// Overrides are applied last, keyed by dotted path, e.g. build.ordering
	Overrides map[string]any
}

// Loaded is a decoded configuration and the files that made it
type Loaded struct {
	Config
	Sources []string
}

// Load merges every configuration layer and decodes the result
func Load(opts Options) (*Loaded, error) {
	log := logging.GetLogger("config")
	k := koanf.New(".")
	loaded := &Loaded{}

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	if !opts.SkipUserConfig {
		path, err := userFile(opts.UserFile)
		if err != nil {
			return nil, err
		}
		if path != "" {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
			loaded.Sources = append(loaded.Sources, path)
		}
	}

	// 3. Units root config
	if opts.UnitsRoot != "" {
		path := filepath.Join(opts.UnitsRoot, RootFile)
		if _, err := os.Stat(path); err == nil {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
			loaded.Sources = append(loaded.Sources, path)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 5. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &loaded.Config,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &loaded.Config, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "failed to decode configuration")
	}

	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Strs("sources", loaded.Sources).Msg("Configuration loaded")
	return loaded, nil
}

// envKey maps SCRAMJET_BUILD_OUTPUT_DIR to build.output_dir. Only the
// first underscore separates the section, keys keep theirs.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

func userFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", explicit).
				WithDetail("path", explicit)
		}
		return explicit, nil
	}
	for _, rel := range userFiles {
		if path, err := xdg.SearchConfigFile(rel); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser = toml.Parser()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return nil
}
