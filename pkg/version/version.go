// Package version reads and writes the build counter kept in a unit.
//
// The counter is a single decimal integer in <unit>/version. A unit without
// the file has never been built.
package version

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/spf13/afero"
)

// FileName is the name of the counter file at the unit root
const FileName = "version"

// Counter reads and persists the version of one unit
type Counter struct {
	fs   afero.Fs
	path string
}

// NewCounter returns the counter of the unit at dir
func NewCounter(fs afero.Fs, dir string) *Counter {
	return &Counter{fs: fs, path: filepath.Join(dir, FileName)}
}

// Path returns the location of the counter file
func (c *Counter) Path() string {
	return c.path
}

// Current returns the persisted version, or 0 when the unit was never built
func (c *Counter) Current() (int, error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", c.path).
			WithDetail("path", c.path)
	}

	text := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrVersionInvalid, "%s holds %q, want a non-negative integer", c.path, text).
			WithDetail("path", c.path)
	}
	return n, nil
}

// Next returns the version the next build targets
func (c *Counter) Next() (int, error) {
	n, err := c.Current()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// Store persists v
func (c *Counter) Store(v int) error {
	if v < 0 {
		return errors.Newf(errors.ErrVersionInvalid, "cannot store negative version %d", v)
	}
	if err := afero.WriteFile(c.fs, c.path, []byte(strconv.Itoa(v)+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", c.path).
			WithDetail("path", c.path)
	}
	return nil
}
