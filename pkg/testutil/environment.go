package testutil

import (
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/filesystem"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/stretchr/testify/require"
)

// DefaultSettings are the settings modules see unless a test overrides them
var DefaultSettings = module.Settings{
	Maintainer:   "Ops <ops@example.com>",
	Section:      "scramjet",
	Architecture: "all",
	LAN:          []string{"192.168.0.0/16", "fe80::/10"},
	UPnPHost:     "192.168.68.105",
	UPnPGateway:  "192.168.68.1",
}

// TestEnvironment provides a unit directory, a staging root and the module
// environment built on them
type TestEnvironment struct {
	Unit   string
	Source string
	Target string

	Bus    *module.Bus
	Router *router.Router
	Env    *module.Env

	modules []module.Module
	t       *testing.T
}

// NewTestEnvironment creates an environment for a unit called unit
func NewTestEnvironment(t *testing.T, unit string) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Unit:   unit,
		Source: filepath.Join(root, "units", unit),
		Target: filepath.Join(root, "staging"),
		Bus:    module.NewBus(),
		Router: router.New(),
		t:      t,
	}
	require.NoError(t, os.MkdirAll(env.Source, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(env.Target, "DEBIAN"), 0755))

	stager := module.NewStager(filesystem.NewOS(env.Source), filesystem.NewOS(env.Target), env.Bus, zerolog.Nop())
	env.Env = &module.Env{
		Unit:     unit,
		Source:   env.Source,
		Target:   env.Target,
		Stager:   stager,
		Settings: DefaultSettings,
		HTTP:     http.DefaultClient,
		Log:      zerolog.Nop(),
	}
	return env
}

// Attach instantiates factory and subscribes it the way a build does
func (e *TestEnvironment) Attach(factory module.Factory) module.Module {
	m := factory(e.Env)
	e.modules = append(e.modules, m)
	e.Bus.Subscribe(m.Name(), m.FileWritten)
	e.Router.Register(m.Name(), m.ConfigHandlers()...)
	return m
}

// WriteSource creates a file in the unit directory
func (e *TestEnvironment) WriteSource(rel, content string, mode fs.FileMode) string {
	e.t.Helper()
	p := filepath.Join(e.Source, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(e.t, os.WriteFile(p, []byte(content), mode))
	require.NoError(e.t, os.Chmod(p, mode))
	return p
}

// Route loads content as a document of kind at docPath and routes it to
// the attached modules
func (e *TestEnvironment) Route(kind, docPath, content string) error {
	e.t.Helper()
	doc, err := router.Load(strings.NewReader(content), kind, docPath)
	if err != nil {
		return err
	}
	return e.Router.Route(doc)
}

// OfferFile writes content at remote in the unit and offers it to every
// attached module
func (e *TestEnvironment) OfferFile(remote, content string, mode fs.FileMode) error {
	e.t.Helper()
	p := e.WriteSource(remote, content, mode)

	f, err := os.Open(p)
	require.NoError(e.t, err)
	defer func() { _ = f.Close() }()

	for _, m := range e.modules {
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		if err := m.HandleFile(remote, f); err != nil {
			return err
		}
	}
	return nil
}

// OfferSymlink creates a symlink at remote in the unit and offers it to
// every attached module
func (e *TestEnvironment) OfferSymlink(remote, target string) error {
	e.t.Helper()
	p := filepath.Join(e.Source, filepath.FromSlash(strings.TrimPrefix(remote, "/")))
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(e.t, os.Symlink(target, p))

	for _, m := range e.modules {
		if err := m.HandleSymlink(remote, target); err != nil {
			return err
		}
	}
	return nil
}

// OfferFragment hands a maintainer script fragment to every attached module
func (e *TestEnvironment) OfferFragment(fragment module.Fragment, text string) error {
	for _, m := range e.modules {
		if err := m.HandleFragment(fragment, text); err != nil {
			return err
		}
	}
	return nil
}

// StagedPath returns the on-disk location of a staged remote path
func (e *TestEnvironment) StagedPath(remote string) string {
	return filepath.Join(e.Target, filepath.FromSlash(strings.TrimPrefix(remote, "/")))
}

// Staged returns the content of a staged file and fails the test if it is
// missing
func (e *TestEnvironment) Staged(remote string) string {
	e.t.Helper()
	data, err := os.ReadFile(e.StagedPath(remote))
	require.NoError(e.t, err, "expected %s to be staged", remote)
	return string(data)
}

// StagedMode returns the permission bits of a staged file
func (e *TestEnvironment) StagedMode(remote string) fs.FileMode {
	e.t.Helper()
	info, err := os.Lstat(e.StagedPath(remote))
	require.NoError(e.t, err)
	return info.Mode().Perm()
}

// IsStaged reports whether remote exists in the staging root
func (e *TestEnvironment) IsStaged(remote string) bool {
	_, err := os.Lstat(e.StagedPath(remote))
	return err == nil
}

// Written returns every path published on the bus
func (e *TestEnvironment) Written() []string {
	return e.Bus.Written()
}

// Plan merges the ledgers of the attached modules
func (e *TestEnvironment) Plan(policy ledger.Policy) *ledger.Plan {
	e.t.Helper()
	ledgers := make([]*ledger.Ledger, len(e.modules))
	for i, m := range e.modules {
		ledgers[i] = m.Ledger()
	}
	plan, err := ledger.Merge(policy, ledgers)
	require.NoError(e.t, err)
	return plan
}
