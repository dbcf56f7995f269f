package archive

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	d := NewDpkgDeb("", "xz", "/tmp/out", true)

	assert.Equal(t, "dpkg-deb", d.Tool)
	assert.Equal(t, []string{
		"--root-owner-group", "-Zxz", "--build", "/tmp/stage", "/tmp/out/web.deb",
	}, d.Args("/tmp/stage", "web"))

	plain := NewDpkgDeb("dpkg-deb", "", "/tmp/out", false)
	assert.Equal(t, []string{"--build", "/tmp/stage", "/tmp/out/web.deb"}, plain.Args("/tmp/stage", "web"))
}

func TestArtifactDefaultsToTempDir(t *testing.T) {
	d := NewDpkgDeb("", "xz", "", true)
	assert.Equal(t, filepath.Join(os.TempDir(), "web.deb"), d.Artifact("web"))
}

// tool writes a shell script standing in for dpkg-deb
func tool(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-dpkg-deb")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestBuildSuccess(t *testing.T) {
	out := t.TempDir()
	d := NewDpkgDeb(tool(t, `for last; do :; done; touch "$last"`), "xz", filepath.Join(out, "debs"), true)

	artifact, err := d.Build(context.Background(), t.TempDir(), "web")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "debs", "web.deb"), artifact)
	assert.FileExists(t, artifact)
}

func TestBuildFailureCarriesOutput(t *testing.T) {
	d := NewDpkgDeb(tool(t, `echo "dpkg-deb: error: control file missing" >&2; exit 2`), "xz", t.TempDir(), true)

	_, err := d.Build(context.Background(), t.TempDir(), "web")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchive))
	assert.Equal(t, "dpkg-deb: error: control file missing", errors.GetErrorDetails(err)["output"])
}

func TestBuildHonoursContext(t *testing.T) {
	d := NewDpkgDeb(tool(t, "sleep 5"), "xz", t.TempDir(), true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Build(ctx, t.TempDir(), "web")
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchive))
}
