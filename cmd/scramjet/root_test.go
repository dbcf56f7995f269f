package scramjet

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ui/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with isolated logging and no user config
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--no-user-config", "--format", "text"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// writeUnit creates a unit directory called name under a fresh units root
func writeUnit(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

// fakeArchiver installs a dpkg-deb stand-in that creates its last argument
func fakeArchiver(t *testing.T) {
	t.Helper()
	tool := filepath.Join(t.TempDir(), "fake-dpkg-deb")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\nfor last; do :; done\ntouch \"$last\"\n"), 0755))
	t.Setenv("SCRAMJET_ARCHIVE_TOOL", tool)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "scramjet version dev\n"), out)
	assert.Contains(t, out, "commit: unknown")
}

func TestNoCommand(t *testing.T) {
	_, err := run(t)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFormatFlagCompletion(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"__complete", "--format", ""})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "auto\nterminal\ntext\njson\n:4\n", out.String())
}

func TestModulesCmd(t *testing.T) {
	out, err := run(t, "modules")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "control "), lines[0])
	assert.Contains(t, out, "gitrepo")
	assert.Contains(t, out, "systemd-units")
}

func TestConfigCmd(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		out, err := run(t, "config")
		require.NoError(t, err)
		assert.Contains(t, out, "[build]")
		assert.Contains(t, out, "tiered")
		assert.Contains(t, out, "dpkg-deb")
	})

	t.Run("ordering flag wins", func(t *testing.T) {
		out, err := run(t, "--ordering", "flat", "config")
		require.NoError(t, err)
		assert.Contains(t, out, "flat")
		assert.NotContains(t, out, "tiered")
	})

	t.Run("units root file", func(t *testing.T) {
		root := t.TempDir()
		unit := writeUnit(t, root, "web", nil)
		require.NoError(t, os.WriteFile(filepath.Join(root, "scramjet.toml"),
			[]byte("[package]\nsection = \"homelab\"\n"), 0644))

		out, err := run(t, "config", unit)
		require.NoError(t, err)
		assert.Contains(t, out, "homelab")
	})

	t.Run("invalid ordering", func(t *testing.T) {
		_, err := run(t, "--ordering", "random", "config")
		require.Error(t, err)
		assert.True(t, errors.HasErrorCode(err, errors.ErrConfigValid))
	})
}

func TestPlanCmd(t *testing.T) {
	unit := writeUnit(t, t.TempDir(), "web", map[string]string{
		"DEBIAN.yml":   "description: web frontend\n",
		"postinst.sh":  "echo installed\n",
		"etc/web.conf": "listen 80\n",
	})

	out, err := run(t, "plan", unit)
	require.NoError(t, err)

	assert.Contains(t, out, "# web 1")
	assert.Contains(t, out, "Package: web")
	assert.Contains(t, out, "Description: web frontend")
	assert.Contains(t, out, "## postinst")
	assert.Contains(t, out, "echo installed")

	_, err = os.Stat(filepath.Join(unit, "version"))
	assert.True(t, os.IsNotExist(err), "plan must not persist the version")
}

func TestBuildCmd(t *testing.T) {
	fakeArchiver(t)
	root := t.TempDir()
	dist := t.TempDir()
	web := writeUnit(t, root, "web", map[string]string{"DEBIAN.yml": "description: web\n"})
	db := writeUnit(t, root, "db", map[string]string{"DEBIAN.yml": "description: db\n", "version": "4\n"})

	out, err := run(t, "build", "--jobs", "2", "--output-dir", dist, web, db)
	require.NoError(t, err)

	assert.Contains(t, out, "web version 1 built as "+filepath.Join(dist, "web.deb"))
	assert.Contains(t, out, "db version 5 built as "+filepath.Join(dist, "db.deb"))
	assert.Less(t, strings.Index(out, "web version"), strings.Index(out, "db version"), "results keep argument order")
	assert.FileExists(t, filepath.Join(dist, "web.deb"))
	assert.FileExists(t, filepath.Join(dist, "db.deb"))

	version, err := os.ReadFile(filepath.Join(db, "version"))
	require.NoError(t, err)
	assert.Equal(t, "5", strings.TrimSpace(string(version)))
}

func TestBuildCmdErrors(t *testing.T) {
	t.Run("missing unit", func(t *testing.T) {
		fakeArchiver(t)
		_, err := run(t, "build", filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.True(t, errors.HasErrorCode(err, errors.ErrNotFound))
	})

	t.Run("jobs below one", func(t *testing.T) {
		_, err := run(t, "build", "--jobs", "0", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--jobs")
	})

	t.Run("no units", func(t *testing.T) {
		_, err := run(t, "build")
		require.Error(t, err)
	})
}

func TestHelpTopics(t *testing.T) {
	out, err := run(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "  units\n")
	assert.Contains(t, out, "  --ordering\n")

	out, err = run(t, "help", "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "jobs")
}

func TestRunWatchStopsWithContext(t *testing.T) {
	fakeArchiver(t)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	unit := writeUnit(t, t.TempDir(), "web", map[string]string{"DEBIAN.yml": "description: web\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	opts := &buildOptions{globalOptions: &globalOptions{noUserConfig: true, format: "text"}}
	err := runWatch(ctx, opts, text.New(out), 10*time.Millisecond, []string{unit})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Error: ")
	assert.Contains(t, out.String(), "Watching 1 unit(s)")
	_, statErr := os.Stat(filepath.Join(unit, "version"))
	assert.True(t, os.IsNotExist(statErr), "a cancelled build must not bump the version")
}
