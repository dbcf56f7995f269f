package config

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
	"github.com/scramjet-deb/scramjet/pkg/errors"
)

const generatedHeader = "# Effective scramjet configuration.\n# Save as $XDG_CONFIG_HOME/scramjet/config.toml or scramjet.toml to pin it.\n\n"

// Generate writes cfg as TOML
func Generate(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}
