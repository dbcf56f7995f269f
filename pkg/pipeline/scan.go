package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/module"
	"github.com/scramjet-deb/scramjet/pkg/router"
	"github.com/scramjet-deb/scramjet/pkg/version"
)

type entryKind int

const (
	kindFile entryKind = iota
	kindSymlink
	kindDocument
	kindFragment
	kindVersion
)

// entry is one classified path of the unit tree
type entry struct {
	kind     entryKind
	local    string
	remote   string
	docKind  string
	fragment module.Fragment
}

// scan walks the unit in lexical order without following symlinks and
// classifies every non-directory entry
func scan(root string) ([]entry, error) {
	var entries []entry

	err := filepath.WalkDir(root, func(local string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if local == root || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, local)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		e := entry{local: local, remote: "/" + rel}

		topLevel := !strings.Contains(rel, "/")
		switch {
		case topLevel && rel == version.FileName:
			e.kind = kindVersion
		case topLevel && module.FragmentFiles[rel] != "":
			e.kind = kindFragment
			e.fragment = module.FragmentFiles[rel]
		default:
			if kind, ok := router.Classify(rel); ok && d.Type().IsRegular() {
				e.kind = kindDocument
				e.docKind = kind
			} else if d.Type()&fs.ModeSymlink != 0 {
				e.kind = kindSymlink
			} else if d.Type().IsRegular() {
				e.kind = kindFile
			} else {
				return nil
			}
		}

		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot walk unit %s", root).
			WithDetail("path", root)
	}
	return entries, nil
}
