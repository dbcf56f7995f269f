// Package archive turns a staging root into a .deb file.
package archive

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/logging"
)

// Archiver builds the package artifact of a unit from its staging root
type Archiver interface {
	Build(ctx context.Context, stagingRoot, unit string) (artifact string, err error)
}

// DpkgDeb builds packages with dpkg-deb
type DpkgDeb struct {
	// Tool is the dpkg-deb binary, looked up in PATH when not absolute
	Tool string
	// Compression is passed as -Z, e.g. xz
	Compression string
	// RootOwnerGroup makes every payload file owned by root:root
	RootOwnerGroup bool
	// OutputDir receives <unit>.deb
	OutputDir string

	log zerolog.Logger
}

// NewDpkgDeb returns an archiver with the given settings
func NewDpkgDeb(tool, compression, outputDir string, rootOwnerGroup bool) *DpkgDeb {
	if tool == "" {
		tool = "dpkg-deb"
	}
	return &DpkgDeb{
		Tool:           tool,
		Compression:    compression,
		RootOwnerGroup: rootOwnerGroup,
		OutputDir:      outputDir,
		log:            logging.GetLogger("archive"),
	}
}

// Artifact returns the path of the package built for unit
func (d *DpkgDeb) Artifact(unit string) string {
	dir := d.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, unit+".deb")
}

// Args returns the dpkg-deb arguments for a build
func (d *DpkgDeb) Args(stagingRoot, unit string) []string {
	var args []string
	if d.RootOwnerGroup {
		args = append(args, "--root-owner-group")
	}
	if d.Compression != "" {
		args = append(args, "-Z"+d.Compression)
	}
	return append(args, "--build", stagingRoot, d.Artifact(unit))
}

// Build runs dpkg-deb. A non-zero exit is an ErrArchive error carrying the
// tool's output.
func (d *DpkgDeb) Build(ctx context.Context, stagingRoot, unit string) (string, error) {
	artifact := d.Artifact(unit)
	if err := os.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create output directory for %s", artifact)
	}

	args := d.Args(stagingRoot, unit)
	logging.LogCommand(d.log, d.Tool, args)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Tool, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, errors.ErrArchive, "%s failed for %s", d.Tool, unit).
			WithDetail("unit", unit).
			WithDetail("output", strings.TrimSpace(output.String()))
	}

	d.log.Info().Str("unit", unit).Str("artifact", artifact).Msg("Package built")
	return artifact, nil
}
