// Package shell validates and quotes the bash snippets that end up in
// maintainer scripts.
package shell

import (
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"mvdan.cc/sh/v3/syntax"
)

// Validate parses script as bash and returns an ErrScriptSyntax error if it
// does not parse. name is used in the parser's position information.
func Validate(script, name string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(script), name); err != nil {
		return errors.Wrapf(err, errors.ErrScriptSyntax, "invalid shell snippet in %s", name).
			WithDetail("script", script)
	}
	return nil
}

// Quote returns s quoted so that bash expands it back to s.
// NUL bytes cannot be represented in a shell word and are dropped.
func Quote(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return quoted
}

// Join quotes every word and joins them with single spaces.
func Join(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = Quote(w)
	}
	return strings.Join(quoted, " ")
}
