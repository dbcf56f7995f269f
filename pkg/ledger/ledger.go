// Package ledger records the shell actions a module contributes to the four
// maintainer-script phases and merges the records of every module into one
// plan.
//
// Each action is bucketed by phase and tier. An action registered with
// AddAction lands in an install phase and its optional undo in the removal
// phase that reverses it; AddRemoval is the mirror image. Triggers and purges
// are kept apart from regular actions and placed by Merge.
package ledger

import (
	"fmt"

	"github.com/scramjet-deb/scramjet/pkg/errors"
)

// Phase is one of the four lifecycle hook points of a Debian package
type Phase string

const (
	Preinst  Phase = "preinst"
	Postinst Phase = "postinst"
	Prerm    Phase = "prerm"
	Postrm   Phase = "postrm"
)

// Phases lists every phase in emission order
var Phases = []Phase{Preinst, Postinst, Prerm, Postrm}

// When selects the side of the install (or removal) an action runs on
type When string

const (
	Before When = "before"
	After  When = "after"
)

// Tier orders actions within a phase across all modules
type Tier string

const (
	Early Tier = "early"
	Late  Tier = "late"
)

// Trigger is a deduplicated snippet run in postinst and postrm.
// Internal triggers run before the regular actions, external ones after the
// early wave.
type Trigger struct {
	Script   string
	Internal bool
}

// entry is one snippet placed in a phase bucket
type entry struct {
	Phase  Phase
	Tier   Tier
	Script string
}

// Ledger is the per-module action record
type Ledger struct {
	module   string
	entries  []entry
	triggers []Trigger
	purges   []string
}

// New creates an empty ledger owned by module
func New(module string) *Ledger {
	return &Ledger{module: module}
}

// Module returns the name of the owning module
func (l *Ledger) Module() string {
	return l.module
}

// AddAction registers an install-time action.
// Before places script in preinst and undo in postrm; after places script in
// postinst and undo in prerm. The undo shares the tier of script.
func (l *Ledger) AddAction(script, undo string, when When, tier Tier) error {
	switch when {
	case Before:
		return l.add(Preinst, Postrm, script, undo, tier)
	case After:
		return l.add(Postinst, Prerm, script, undo, tier)
	}
	return l.invalidWhen(when)
}

// AddRemoval registers a removal-time action whose undo runs at install.
// Before places script in prerm and undo in postinst; after places script in
// postrm and undo in preinst.
func (l *Ledger) AddRemoval(script, undo string, when When, tier Tier) error {
	switch when {
	case Before:
		return l.add(Prerm, Postinst, script, undo, tier)
	case After:
		return l.add(Postrm, Preinst, script, undo, tier)
	}
	return l.invalidWhen(when)
}

// AddTrigger registers a trigger. Duplicates are removed at merge time.
func (l *Ledger) AddTrigger(script string, internal bool) {
	l.triggers = append(l.triggers, Trigger{Script: script, Internal: internal})
}

// AddPurge registers a snippet that only runs when the package is purged
func (l *Ledger) AddPurge(script string) {
	l.purges = append(l.purges, script)
}

func (l *Ledger) add(phase, undoPhase Phase, script, undo string, tier Tier) error {
	if tier != Early && tier != Late {
		return errors.Newf(errors.ErrActionInvalid, "module %s used unknown tier %q", l.module, tier).
			WithDetail("module", l.module)
	}
	if script == "" {
		return errors.Newf(errors.ErrActionInvalid, "module %s registered an empty action", l.module).
			WithDetail("module", l.module)
	}

	l.entries = append(l.entries, entry{Phase: phase, Tier: tier, Script: script})
	if undo != "" {
		l.entries = append(l.entries, entry{Phase: undoPhase, Tier: tier, Script: undo})
	}
	return nil
}

func (l *Ledger) invalidWhen(when When) error {
	return errors.Newf(errors.ErrActionInvalid, "module %s used unknown phase selector %q", l.module, when).
		WithDetail("module", l.module)
}

// Actions returns the snippets registered for phase in the given tier, in
// registration order
func (l *Ledger) Actions(phase Phase, tier Tier) []string {
	var out []string
	for _, e := range l.entries {
		if e.Phase == phase && e.Tier == tier {
			out = append(out, e.Script)
		}
	}
	return out
}

// All returns every snippet registered for phase in registration order,
// regardless of tier
func (l *Ledger) All(phase Phase) []string {
	var out []string
	for _, e := range l.entries {
		if e.Phase == phase {
			out = append(out, e.Script)
		}
	}
	return out
}

// Triggers returns the registered triggers in registration order
func (l *Ledger) Triggers() []Trigger {
	return append([]Trigger(nil), l.triggers...)
}

// Purges returns the registered purge snippets in registration order
func (l *Ledger) Purges() []string {
	return append([]string(nil), l.purges...)
}

// Empty reports whether nothing at all was registered
func (l *Ledger) Empty() bool {
	return len(l.entries) == 0 && len(l.triggers) == 0 && len(l.purges) == 0
}

// String returns a short summary for logging
func (l *Ledger) String() string {
	return fmt.Sprintf("%s: %d actions, %d triggers, %d purges",
		l.module, len(l.entries), len(l.triggers), len(l.purges))
}
