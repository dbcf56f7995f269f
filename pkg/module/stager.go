package module

import (
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/filesystem"
)

// ControlDir is the staging directory holding package metadata and scripts
const ControlDir = "/DEBIAN"

// StageOptions control the metadata of a staged file
type StageOptions struct {
	// Mode is applied after the write. Requesting a mode for a symlink is a
	// policy violation.
	Mode *fs.FileMode
	// Like is a unit path whose mode, timestamps and owner are copied onto
	// the output
	Like string
}

// WithMode returns options that set mode
func WithMode(mode fs.FileMode) StageOptions {
	return StageOptions{Mode: &mode}
}

// WriteFunc writes the output at name inside fsys
type WriteFunc func(fsys filesystem.FS, name string) error

// Stager writes files into the staging root on behalf of modules
type Stager struct {
	source filesystem.FS
	target filesystem.FS
	bus    *Bus
	log    zerolog.Logger
}

// NewStager creates a stager copying metadata from source and writing into
// target. Every staged file is published on bus.
func NewStager(source, target filesystem.FS, bus *Bus, log zerolog.Logger) *Stager {
	return &Stager{source: source, target: target, bus: bus, log: log}
}

// Stage creates the parent directories of remote, lets write produce the
// file, copies metadata from opts.Like, applies opts.Mode and publishes the
// write.
func (s *Stager) Stage(remote string, opts StageOptions, write WriteFunc) error {
	name, err := cleanRemote(remote)
	if err != nil {
		return err
	}

	if err := s.target.MkdirAll(path.Dir(name), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", name).
			WithDetail("path", name)
	}

	if err := write(s.target, name); err != nil {
		if errors.IsCoded(err) {
			return err
		}
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot stage %s", name).
			WithDetail("path", name)
	}

	info, err := s.target.Lstat(name)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "staged file %s is missing", name).
			WithDetail("path", name)
	}
	isLink := info.Mode()&fs.ModeSymlink != 0

	if opts.Like != "" && !isLink {
		if err := s.copyMetadata(opts.Like, name); err != nil {
			return err
		}
	}

	if opts.Mode != nil {
		if isLink {
			return errors.Newf(errors.ErrPolicyViolation, "tried to set mode %#o on symlink %s", *opts.Mode, name).
				WithDetail("path", name)
		}
		if err := s.target.Chmod(name, *opts.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot set mode of %s", name).
				WithDetail("path", name)
		}
	}

	s.log.Trace().Str("remote", name).Msg("Staged file")

	return s.bus.Publish(name, s.target.RealPath(name))
}

// copyMetadata copies mode bits and timestamps from the unit path like onto
// name, and the owner when permitted
func (s *Stager) copyMetadata(like, name string) error {
	likeName, err := cleanRemote(like)
	if err != nil {
		return err
	}

	info, err := s.source.Lstat(likeName)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read metadata of %s", likeName).
			WithDetail("path", likeName)
	}

	if err := s.target.Chmod(name, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy mode onto %s", name)
	}
	if err := s.target.Chtimes(name, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy timestamps onto %s", name)
	}

	if uid, gid, ok := fileOwner(info); ok {
		if err := s.target.Chown(name, uid, gid); err != nil {
			s.log.Debug().Err(err).Str("path", name).Msg("Could not copy owner")
		}
	}
	return nil
}

// WriteFile stages data at remote with mode
func (s *Stager) WriteFile(remote string, data []byte, mode fs.FileMode) error {
	return s.Stage(remote, WithMode(mode), func(fsys filesystem.FS, name string) error {
		return fsys.WriteFile(name, data, mode)
	})
}

// Create stages remote with content produced by fill
func (s *Stager) Create(remote string, opts StageOptions, fill func(w io.Writer) error) error {
	return s.Stage(remote, opts, func(fsys filesystem.FS, name string) error {
		w, err := fsys.Create(name)
		if err != nil {
			return err
		}
		if err := fill(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
}

// Symlink stages a symlink at remote pointing at target, taken verbatim
func (s *Stager) Symlink(remote, target string, opts StageOptions) error {
	return s.Stage(remote, opts, func(fsys filesystem.FS, name string) error {
		if err := fsys.Symlink(target, name); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s to %s", name, target).
				WithDetail("path", name)
		}
		return nil
	})
}

// WriteControl writes a file into the control directory. Control files are
// package metadata, not payload, so no module is notified.
func (s *Stager) WriteControl(name, content string, mode fs.FileMode) error {
	full := path.Join(ControlDir, name)
	if err := s.target.MkdirAll(ControlDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create control directory")
	}
	if err := s.target.WriteFile(full, []byte(content), mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", full)
	}
	if err := s.target.Chmod(full, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot set mode of %s", full)
	}
	return nil
}

// ReadStaged returns the content of a staged file
func (s *Stager) ReadStaged(remote string) ([]byte, error) {
	name, err := cleanRemote(remote)
	if err != nil {
		return nil, err
	}
	data, err := s.target.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "%s was not staged", name)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read staged %s", name)
	}
	return data, nil
}

// Text stages content as a regular file, executable or not
func (s *Stager) Text(remote, content string, executable bool) error {
	mode := fs.FileMode(0644)
	if executable {
		mode = 0755
	}
	return s.Create(remote, WithMode(mode), func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// cleanRemote validates that remote is an absolute target path and returns
// it cleaned
func cleanRemote(remote string) (string, error) {
	if !strings.HasPrefix(remote, "/") {
		return "", errors.Newf(errors.ErrInvalidInput, "staged path %q must be absolute", remote).
			WithDetail("path", remote)
	}
	name := path.Clean(remote)
	if name == "/" {
		return "", errors.New(errors.ErrInvalidInput, "cannot stage the root directory")
	}
	return name, nil
}
