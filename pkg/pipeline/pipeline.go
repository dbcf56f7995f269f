// Package pipeline builds a unit directory into a Debian package.
//
// One build walks the unit once and drives every registered module through
// its hooks. It then merges the modules' metadata and ledgers into
// DEBIAN/control and the maintainer scripts, hands the staging root to the
// archiver, and finally bumps the unit's version counter. Any error aborts
// the build; the staging root is always removed and the counter is only
// written after the archiver succeeded.
package pipeline

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/archive"
	"github.com/scramjet-deb/scramjet/pkg/control"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/filesystem"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/logging"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/registry"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/scripts"
	"github.com/scramjet-deb/scramjet/pkg/version"
	"github.com/spf13/afero"
)

// Options configure a pipeline
type Options struct {
	// Modules are instantiated in registration order for every build
	Modules registry.Registry[module.Factory]
	// Policy selects the script merge order
	Policy ledger.Policy
	// Settings are handed to every module
	Settings module.Settings
	// Archiver builds the artifact; required by Build, unused by Plan
	Archiver archive.Archiver
	// HTTP is used by modules fetching remote resources
	HTTP *http.Client
	// Logger replaces the pipeline component logger when set
	Logger *zerolog.Logger
}

// Result describes a finished build
type Result struct {
	BuildID  string
	Unit     string
	Version  int
	Control  string
	Plan     *ledger.Plan
	Scripts  []scripts.Script
	Files    []string
	Modules  []string
	Artifact string
}

// Pipeline builds units
type Pipeline struct {
	opts Options
	log  zerolog.Logger
}

// New creates a pipeline
func New(opts Options) *Pipeline {
	if opts.Modules == nil {
		opts.Modules = registry.New[module.Factory]()
	}
	if opts.Policy == "" {
		opts.Policy = ledger.DefaultPolicy
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	logger := logging.GetLogger("pipeline")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Pipeline{opts: opts, log: logger}
}

// Build produces the package of the unit at unitDir and persists its new
// version
func (p *Pipeline) Build(ctx context.Context, unitDir string) (*Result, error) {
	if p.opts.Archiver == nil {
		return nil, errors.New(errors.ErrInvalidInput, "pipeline has no archiver")
	}
	return p.run(ctx, unitDir, true)
}

// Plan runs every step of a build except the archive step and version
// persistence
func (p *Pipeline) Plan(ctx context.Context, unitDir string) (*Result, error) {
	return p.run(ctx, unitDir, false)
}

// build is the state of one run
type build struct {
	result  *Result
	log     zerolog.Logger
	env     *module.Env
	bus     *module.Bus
	router  *router.Router
	modules []module.Module
}

func (p *Pipeline) run(ctx context.Context, unitDir string, assemble bool) (*Result, error) {
	abs, err := filepath.Abs(unitDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid unit path %s", unitDir)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrNotFound, "unit %s is not a directory", abs).
			WithDetail("path", abs)
	}

	unit := filepath.Base(abs)
	buildID := uuid.NewString()
	log := p.log.With().Str("unit", unit).Str("build", buildID).Logger()
	done := logging.LogOperationStart(log, "build")
	defer done()

	staging, err := os.MkdirTemp("", "scramjet-"+unit+"-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create staging root")
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			log.Warn().Err(err).Str("staging", staging).Msg("Failed to remove staging root")
		}
	}()
	if err := os.Mkdir(filepath.Join(staging, "DEBIAN"), 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create control directory")
	}

	b := p.prepare(abs, staging, unit, log)
	b.result.BuildID = buildID

	entries, err := scan(abs)
	if err != nil {
		return nil, err
	}
	if err := b.dispatch(ctx, entries); err != nil {
		return nil, err
	}

	counter := version.NewCounter(afero.NewOsFs(), abs)
	next, err := counter.Next()
	if err != nil {
		return nil, err
	}
	b.result.Version = next

	if err := b.emit(p.opts.Policy); err != nil {
		return nil, err
	}
	b.result.Files = b.bus.Written()

	if !assemble {
		return b.result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "build cancelled")
	}
	artifact, err := p.opts.Archiver.Build(ctx, staging, unit)
	if err != nil {
		if !errors.IsCoded(err) {
			err = errors.Wrapf(err, errors.ErrArchive, "archiving %s failed", unit)
		}
		return nil, err
	}
	b.result.Artifact = artifact

	if err := counter.Store(next); err != nil {
		return nil, err
	}
	log.Info().Int("version", next).Str("artifact", artifact).Msg("Build complete")
	return b.result, nil
}

// prepare instantiates every module against a fresh bus and router
func (p *Pipeline) prepare(source, staging, unit string, log zerolog.Logger) *build {
	bus := module.NewBus()
	env := &module.Env{
		Unit:     unit,
		Source:   source,
		Target:   staging,
		Stager:   module.NewStager(filesystem.NewOS(source), filesystem.NewOS(staging), bus, log),
		Settings: p.opts.Settings,
		HTTP:     p.opts.HTTP,
		Log:      log,
	}

	b := &build{
		result: &Result{Unit: unit},
		log:    log,
		env:    env,
		bus:    bus,
		router: router.New(),
	}

	for _, name := range p.opts.Modules.Names() {
		factory, err := p.opts.Modules.Get(name)
		if err != nil {
			log.Warn().Err(err).Str("module", name).Msg("Module skipped")
			continue
		}
		m := factory(env)
		b.modules = append(b.modules, m)
		b.result.Modules = append(b.result.Modules, m.Name())
		bus.Subscribe(m.Name(), m.FileWritten)
		b.router.Register(m.Name(), m.ConfigHandlers()...)
	}
	log.Debug().Strs("modules", b.result.Modules).Msg("Modules instantiated")
	return b
}

// dispatch routes documents, then fragments, then files and symlinks in
// walk order
func (b *build) dispatch(ctx context.Context, entries []entry) error {
	for _, e := range entries {
		if e.kind != kindDocument {
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "build cancelled")
		}
		if err := b.document(e); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.kind != kindFragment {
			continue
		}
		if err := b.fragment(e); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "build cancelled")
		}

		var err error
		switch e.kind {
		case kindFile:
			err = b.file(e)
		case kindSymlink:
			err = b.symlink(e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *build) document(e entry) error {
	f, err := os.Open(e.local)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", e.remote)
	}
	defer func() { _ = f.Close() }()

	doc, err := router.Load(f, e.docKind, e.remote)
	if err != nil {
		return err
	}
	b.log.Debug().Str("document", e.remote).Msg("Routing configuration document")
	return b.router.Route(doc)
}

func (b *build) fragment(e entry) error {
	data, err := os.ReadFile(e.local)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", e.remote)
	}
	for _, m := range b.modules {
		if err := m.HandleFragment(e.fragment, string(data)); err != nil {
			return moduleError(m, e.remote, err)
		}
	}
	return nil
}

func (b *build) file(e entry) error {
	f, err := os.Open(e.local)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", e.remote)
	}
	defer func() { _ = f.Close() }()

	for _, m := range b.modules {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot rewind %s", e.remote)
		}
		if err := m.HandleFile(e.remote, f); err != nil {
			return moduleError(m, e.remote, err)
		}
	}
	return nil
}

func (b *build) symlink(e entry) error {
	target, err := os.Readlink(e.local)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", e.remote)
	}
	for _, m := range b.modules {
		if err := m.HandleSymlink(e.remote, target); err != nil {
			return moduleError(m, e.remote, err)
		}
	}
	return nil
}

// emit writes DEBIAN/control and the maintainer scripts
func (b *build) emit(policy ledger.Policy) error {
	fragments := []*control.Fragment{unitFragment(b.env.Unit)}
	ledgers := make([]*ledger.Ledger, 0, len(b.modules))
	for _, m := range b.modules {
		fragments = append(fragments, m.Control())
		ledgers = append(ledgers, m.Ledger())
	}

	rendered, err := control.Merge(b.result.Version, fragments...).Render()
	if err != nil {
		return err
	}
	b.result.Control = rendered
	if err := b.env.Stager.WriteControl("control", b.result.Control, 0644); err != nil {
		return err
	}

	plan, err := ledger.Merge(policy, ledgers)
	if err != nil {
		return err
	}
	b.result.Plan = plan

	emitted, err := scripts.Emit(plan)
	if err != nil {
		return err
	}
	for _, s := range emitted {
		if err := b.env.Stager.WriteControl(string(s.Phase), s.Content, scripts.Mode); err != nil {
			return err
		}
	}
	b.result.Scripts = emitted

	b.log.Debug().Int("scripts", len(emitted)).Str("policy", string(policy)).Msg("Maintainer scripts emitted")
	return nil
}

// unitFragment names the package after its unit
func unitFragment(unit string) *control.Fragment {
	f := control.NewFragment()
	f.Add(control.Package, unit)
	return f
}

func moduleError(m module.Module, path string, err error) error {
	if errors.IsErrorCode(err, errors.ErrModuleFailed) {
		return err
	}
	return errors.Wrapf(err, errors.ErrModuleFailed, "module %s failed on %s", m.Name(), path).
		WithDetail("module", m.Name()).
		WithDetail("path", path)
}

// Script returns the rendered script of phase, if one was emitted
func (r *Result) Script(phase ledger.Phase) (string, bool) {
	for _, s := range r.Scripts {
		if s.Phase == phase {
			return s.Content, true
		}
	}
	return "", false
}
