// Package gzipfiles stages gzip-compressed copies of selected files next to
// the originals.
package gzipfiles

import (
	"compress/gzip"
	"io"

	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "gzip"

// Module writes <path>.gz for every path listed under compress
type Module struct {
	module.Base
	stager   *module.Stager
	compress map[string]bool
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{
		Base:     module.NewBase(Name),
		stager:   env.Stager,
		compress: make(map[string]bool),
	}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"compress"},
		Handle: func(_ string, fields router.Fields) error {
			var paths []string
			if err := fields.Decode("compress", &paths); err != nil {
				return err
			}
			for _, p := range paths {
				m.compress[p] = true
			}
			return nil
		},
	}}
}

func (m *Module) HandleFile(path string, r io.ReadSeeker) error {
	if !m.compress[path] {
		return nil
	}

	opts := module.WithMode(0644)
	opts.Like = path
	return m.stager.Create(path+".gz", opts, func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		if _, err := io.Copy(gz, r); err != nil {
			_ = gz.Close()
			return err
		}
		return gz.Close()
	})
}
