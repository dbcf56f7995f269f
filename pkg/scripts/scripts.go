// Package scripts renders merged ledger plans into Debian maintainer
// scripts.
//
// Every action becomes its own subshell block so a failing block does not
// stop later blocks. preinst and prerm run with set -e; postrm starts with a
// purge branch that exits before the regular body when dpkg purges the
// package.
package scripts

import (
	"strings"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Mode is the file mode of every emitted script
const Mode = 0755

// Script is one rendered maintainer script
type Script struct {
	Phase   ledger.Phase
	Content string
}

// Render produces the script text of phase. purges are only used for
// postrm.
func Render(phase ledger.Phase, body, purges []string) string {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash")

	if phase == ledger.Preinst || phase == ledger.Prerm {
		sb.WriteString("\nset -e")
	}

	if phase == ledger.Postrm && len(purges) > 0 {
		sb.WriteString("\n\n" + `if [[ "$1" == "purge" ]]; then`)
		writeBlocks(&sb, purges)
		sb.WriteString("\n\nexit 0; fi")
	}

	writeBlocks(&sb, body)
	sb.WriteString("\n\nexit 0\n")
	return sb.String()
}

func writeBlocks(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString("\n\n(\n")
		sb.WriteString(item)
		sb.WriteString("\n)")
	}
}

// Emit renders every phase the plan produces, in phase order. Each script
// is parsed again as a whole before it is returned.
func Emit(plan *ledger.Plan) ([]Script, error) {
	var out []Script
	for _, phase := range ledger.Phases {
		if !plan.Emits(phase) {
			continue
		}

		content := Render(phase, plan.Body(phase), plan.Purges)
		if err := shell.Validate(content, string(phase)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrScriptSyntax, "rendered %s does not parse", phase).
				WithDetail("phase", string(phase))
		}
		out = append(out, Script{Phase: phase, Content: content})
	}
	return out, nil
}
