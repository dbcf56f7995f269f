// Package watch rebuilds units when their files change.
//
// Events are debounced per unit so an editor's write-rename sequence causes
// one rebuild. Rebuilds of the same unit go through a singleflight group: a
// unit is never built twice at once, and changes arriving while a build runs
// schedule exactly one follow-up build.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/logging"
	"github.com/scramjet-deb/scramjet/pkg/version"
	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is the quiet period before a changed unit is rebuilt
const DefaultDebounce = 500 * time.Millisecond

// BuildFunc builds the unit at dir
type BuildFunc func(ctx context.Context, dir string) error

// Options configure a Watcher
type Options struct {
	Debounce time.Duration
	Build    BuildFunc
}

// unitState tracks one watched unit
type unitState struct {
	dir   string
	timer *time.Timer
	dirty atomic.Bool
}

// Watcher watches unit directories
type Watcher struct {
	fsw      *fsnotify.Watcher
	build    BuildFunc
	debounce time.Duration
	group    singleflight.Group
	log      zerolog.Logger

	mu    sync.Mutex
	units map[string]*unitState
	ctx   context.Context
}

// New watches every directory of the given units
func New(opts Options, units ...string) (*Watcher, error) {
	if opts.Build == nil {
		return nil, errors.New(errors.ErrInvalidInput, "watcher needs a build function")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create file watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		build:    opts.Build,
		debounce: opts.Debounce,
		log:      logging.GetLogger("watch"),
		units:    make(map[string]*unitState),
	}

	for _, u := range units {
		abs, err := filepath.Abs(u)
		if err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid unit path %s", u)
		}
		if err := w.addTree(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.units[abs] = &unitState{dir: abs}
	}
	return w, nil
}

// Units returns the watched unit directories, sorted
func (w *Watcher) Units() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.units))
	for dir := range w.units {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

// Ignored reports whether a unit-relative path never triggers a rebuild.
// The version file is written by the build itself.
func Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == version.FileName {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".git" {
			return true
		}
	}
	base := filepath.Base(rel)
	return strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#")
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(root, p); rel != "." && Ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", p).
				WithDetail("path", p)
		}
		return nil
	})
}

// unitOf returns the unit containing path and the path relative to it
func (w *Watcher) unitOf(path string) (*unitState, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir, u := range w.units {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return u, rel
		}
	}
	return nil, ""
}

// Run processes events until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		for _, u := range w.units {
			if u.timer != nil {
				u.timer.Stop()
			}
		}
		w.mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to close file watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	u, rel := w.unitOf(event.Name)
	if u == nil || rel == "." || Ignored(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn().Err(err).Str("path", event.Name).Msg("Cannot watch new directory")
			}
		}
	}

	w.log.Trace().Str("unit", u.dir).Str("path", rel).Str("op", event.Op.String()).Msg("Change detected")
	u.dirty.Store(true)
	w.schedule(u)
}

// schedule (re)starts the debounce timer of u
func (w *Watcher) schedule(u *unitState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if u.timer != nil {
		u.timer.Stop()
	}
	u.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		ctx := w.ctx
		w.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		if err := w.Rebuild(ctx, u.dir); err != nil {
			w.log.Error().Err(err).Str("unit", u.dir).Msg("Rebuild failed")
		}
	})
}

// Rebuild builds the unit at dir unless a build of it is already running,
// in which case the caller shares that build's result
func (w *Watcher) Rebuild(ctx context.Context, dir string) error {
	u, _ := w.unitOf(dir)

	_, err, shared := w.group.Do(dir, func() (any, error) {
		if u != nil {
			u.dirty.Store(false)
		}
		err := w.build(ctx, dir)
		if u != nil && u.dirty.Load() && ctx.Err() == nil {
			// changed while building
			w.schedule(u)
		}
		return nil, err
	})
	if shared {
		w.log.Debug().Str("unit", dir).Msg("Joined running build")
	}
	return err
}
