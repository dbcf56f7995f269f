// Package router loads the configuration documents found in a unit and
// offers them to the handlers modules register for them.
package router

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/copystructure"
	"github.com/scramjet-deb/scramjet/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document kinds
const (
	// KindDebian is the unit-level DEBIAN.yml document
	KindDebian = "debian"
	// KindGit is a .git.yml document describing a managed repository
	KindGit = "git"
)

// debianNames are the accepted spellings of the unit document
var debianNames = map[string]bool{
	"DEBIAN.yml":  true,
	"DEBIAN.yaml": true,
	"DEBIAN.YML":  true,
}

// Classify returns the document kind of a unit-relative, slash-separated
// path, or false if the path is not a configuration document
func Classify(rel string) (string, bool) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if debianNames[rel] {
		return KindDebian, true
	}
	if path.Base(rel) == ".git.yml" {
		return KindGit, true
	}
	return "", false
}

// Document is a loaded configuration document
type Document struct {
	Kind string
	// Path is the absolute target path of the document, e.g. /srv/app/.git.yml
	Path string
	Data map[string]any
}

// Load parses r as YAML. The document must be a mapping; an empty document
// is an empty mapping.
func Load(r io.Reader, kind, docPath string) (*Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", docPath).
			WithDetail("path", docPath)
	}

	doc := &Document{Kind: kind, Path: docPath, Data: map[string]any{}}
	if raw == nil {
		return doc, nil
	}

	data, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigValid, "%s must be a mapping, got %T", docPath, raw).
			WithDetail("path", docPath)
	}
	doc.Data = data
	return doc, nil
}

// Fields holds the present, deep-copied values of the keys a handler declared
type Fields map[string]any

// Has reports whether key was present in the document
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Decode converts the value of key into target with weak typing, so a port
// written as 22 decodes into a string. A missing key leaves target untouched.
func (f Fields) Decode(key string, target any) error {
	value, ok := f[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "yaml",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot create decoder")
	}
	if err := decoder.Decode(value); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "invalid value for %q", key).
			WithDetail("key", key)
	}
	return nil
}

// Handler is one (document, keys, function) registration of a module.
// Handle is skipped when none of Keys is present in the document.
type Handler struct {
	Document string
	Keys     []string
	Handle   func(docPath string, fields Fields) error
}

type owner struct {
	module   string
	handlers []Handler
}

// Router dispatches documents to handlers in registration order
type Router struct {
	owners []owner
}

// New creates an empty router
func New() *Router {
	return &Router{}
}

// Register adds the handlers of module after every earlier registration
func (r *Router) Register(module string, handlers ...Handler) {
	r.owners = append(r.owners, owner{module: module, handlers: handlers})
}

// Keys returns every key declared for a document kind, sorted
func (r *Router) Keys(kind string) []string {
	seen := make(map[string]bool)
	for _, o := range r.owners {
		for _, h := range o.handlers {
			if h.Document != kind {
				continue
			}
			for _, k := range h.Keys {
				seen[k] = true
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Route offers doc to every matching handler. Keys no handler declares are a
// configuration error and nothing is dispatched.
func (r *Router) Route(doc *Document) error {
	if err := r.checkUnknown(doc); err != nil {
		return err
	}

	for _, o := range r.owners {
		for _, h := range o.handlers {
			if h.Document != doc.Kind {
				continue
			}

			fields := make(Fields, len(h.Keys))
			for _, k := range h.Keys {
				v, ok := doc.Data[k]
				if !ok || v == nil {
					continue
				}
				c, err := clone(v)
				if err != nil {
					return errors.Wrapf(err, errors.ErrInternal, "cannot copy %s in %s", k, doc.Path).
						WithDetail("key", k)
				}
				fields[k] = c
			}
			if len(fields) == 0 {
				continue
			}

			if err := h.Handle(doc.Path, fields); err != nil {
				return errors.Wrapf(err, errors.ErrModuleFailed, "module %s failed on %s", o.module, doc.Path).
					WithDetail("module", o.module).
					WithDetail("path", doc.Path)
			}
		}
	}
	return nil
}

func (r *Router) checkUnknown(doc *Document) error {
	declared := make(map[string]bool)
	for _, k := range r.Keys(doc.Kind) {
		declared[k] = true
	}

	var unknown []string
	for k := range doc.Data {
		if !declared[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	return errors.Newf(errors.ErrConfigValid, "%s: unknown keys %s", doc.Path, strings.Join(unknown, ", ")).
		WithDetail("path", doc.Path).
		WithDetail("keys", unknown)
}

// clone copies v so a handler can mutate its fields without affecting
// other handlers
func clone(v any) (any, error) {
	c, err := copystructure.Copy(v)
	if err != nil {
		return nil, err
	}
	return stringKeys(c), nil
}

// stringKeys rewrites the map[any]any yaml.v3 produces for non-string keys
// into map[string]any, modifying v in place
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
	}
	return v
}
