package module

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stagerFixture struct {
	source string
	target string
	bus    *Bus
	stager *Stager
	seen   []string
}

func newStagerFixture(t *testing.T) *stagerFixture {
	t.Helper()
	f := &stagerFixture{
		source: t.TempDir(),
		target: t.TempDir(),
		bus:    NewBus(),
	}
	f.bus.Subscribe("observer", func(remote, local string) error {
		f.seen = append(f.seen, remote)
		return nil
	})
	f.stager = NewStager(filesystem.NewOS(f.source), filesystem.NewOS(f.target), f.bus, zerolog.Nop())
	return f
}

func TestStageCreatesParentsAndNotifies(t *testing.T) {
	f := newStagerFixture(t)

	require.NoError(t, f.stager.WriteFile("/etc/app/conf.d/main.conf", []byte("a=1\n"), 0640))

	local := filepath.Join(f.target, "etc", "app", "conf.d", "main.conf")
	info, err := os.Stat(local)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.Equal(t, []string{"/etc/app/conf.d/main.conf"}, f.seen)
	assert.Equal(t, []string{"/etc/app/conf.d/main.conf"}, f.bus.Written())
}

func TestStageCopiesMetadataFromLike(t *testing.T) {
	f := newStagerFixture(t)

	src := filepath.Join(f.source, "usr", "bin", "tool")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0600))
	stamp := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, stamp, stamp))

	err := f.stager.Create("/usr/bin/tool", StageOptions{Like: "/usr/bin/tool"}, func(w io.Writer) error {
		_, err := io.WriteString(w, "#!/bin/sh\n")
		return err
	})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(f.target, "usr", "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(stamp))
}

func TestStageModeOverridesLike(t *testing.T) {
	f := newStagerFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.source, "run.sh"), []byte("#!/bin/sh\n"), 0600))

	mode := os.FileMode(0755)
	err := f.stager.Stage("/run.sh", StageOptions{Mode: &mode, Like: "/run.sh"}, func(fsys filesystem.FS, name string) error {
		return fsys.WriteFile(name, []byte("#!/bin/sh\n"), 0644)
	})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(f.target, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestStageSymlink(t *testing.T) {
	f := newStagerFixture(t)

	require.NoError(t, f.stager.Symlink("/etc/nginx/sites-enabled/web.conf", "../sites-available/web.conf", StageOptions{}))

	target, err := os.Readlink(filepath.Join(f.target, "etc", "nginx", "sites-enabled", "web.conf"))
	require.NoError(t, err)
	assert.Equal(t, "../sites-available/web.conf", target)
	assert.Equal(t, []string{"/etc/nginx/sites-enabled/web.conf"}, f.seen)
}

func TestStageModeOnSymlinkIsPolicyViolation(t *testing.T) {
	f := newStagerFixture(t)

	err := f.stager.Symlink("/etc/link", "/etc/target", WithMode(0644))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPolicyViolation))
	assert.Empty(t, f.seen)
}

func TestStageRejectsRelativePath(t *testing.T) {
	f := newStagerFixture(t)

	err := f.stager.WriteFile("etc/app.conf", []byte("x"), 0644)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	err = f.stager.WriteFile("/", []byte("x"), 0644)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestStageMissingLike(t *testing.T) {
	f := newStagerFixture(t)

	err := f.stager.Create("/etc/x", StageOptions{Like: "/etc/x"}, func(w io.Writer) error { return nil })
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestWriteControlDoesNotNotify(t *testing.T) {
	f := newStagerFixture(t)

	require.NoError(t, f.stager.WriteControl("postinst", "#!/bin/bash\n", 0755))

	info, err := os.Stat(filepath.Join(f.target, "DEBIAN", "postinst"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.Empty(t, f.seen)
}

func TestTextAndReadStaged(t *testing.T) {
	f := newStagerFixture(t)

	require.NoError(t, f.stager.Text("/usr/local/bin/hook", "echo hi\n", true))

	data, err := f.stager.ReadStaged("/usr/local/bin/hook")
	require.NoError(t, err)
	assert.Equal(t, "echo hi\n", string(data))

	info, err := os.Stat(filepath.Join(f.target, "usr", "local", "bin", "hook"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	_, err = f.stager.ReadStaged("/nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
