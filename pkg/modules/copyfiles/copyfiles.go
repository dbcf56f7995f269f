// Package copyfiles stages every regular file and symlink of a unit under
// its relative path.
//
// File modes are derived from content rather than copied: scripts starting
// with "#!/" and binary content become 0755, everything else 0644. Paths
// listed under the secure key lose their group and other bits. Text content
// has its line endings normalized to LF.
package copyfiles

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
)

// Name is the registry name of the module
const Name = "copy"

// sniffLen is the amount of content inspected to classify a file
const sniffLen = 512

// Module copies unit content into the staging root
type Module struct {
	module.Base
	stager *module.Stager
	secure map[string]bool
}

// New creates the module for one build
func New(env *module.Env) module.Module {
	return &Module{
		Base:   module.NewBase(Name),
		stager: env.Stager,
		secure: make(map[string]bool),
	}
}

func (m *Module) ConfigHandlers() []router.Handler {
	return []router.Handler{{
		Document: router.KindDebian,
		Keys:     []string{"secure"},
		Handle: func(_ string, fields router.Fields) error {
			var secure map[string][]string
			if err := fields.Decode("secure", &secure); err != nil {
				return err
			}
			for _, paths := range secure {
				for _, p := range paths {
					m.secure[p] = true
				}
			}
			return nil
		},
	}}
}

// classify returns the mode a file should be staged with and whether its
// content is text
func classify(head []byte) (fs.FileMode, bool) {
	var major string
	if len(head) >= 3 {
		major, _, _ = strings.Cut(http.DetectContentType(head), "/")
	}

	mode := fs.FileMode(0755)
	if !bytes.HasPrefix(head, []byte("#!/")) && major != "application" {
		mode &= 0666
	}
	return mode, major == "text"
}

func (m *Module) HandleFile(path string, r io.ReadSeeker) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot rewind %s", path)
	}

	mode, text := classify(head[:n])
	if m.secure[path] {
		mode &= 0700
	}

	opts := module.WithMode(mode)
	opts.Like = path
	return m.stager.Create(path, opts, func(w io.Writer) error {
		if !text {
			_, err := io.Copy(w, r)
			return err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		_, err = w.Write(data)
		return err
	})
}

func (m *Module) HandleSymlink(path, target string) error {
	return m.stager.Symlink(path, target, module.StageOptions{Like: path})
}
