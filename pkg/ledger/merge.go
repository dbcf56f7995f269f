package ledger

import (
	"fmt"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/shell"
)

// Policy selects how triggers and tiers are interleaved in a phase
type Policy string

const (
	// Tiered runs internal triggers, then early actions of every module, then
	// external triggers, then late actions.
	Tiered Policy = "tiered"

	// Flat runs internal triggers, then every action in module and
	// registration order, then external triggers.
	Flat Policy = "flat"
)

// DefaultPolicy is used when no ordering is configured
const DefaultPolicy = Tiered

// ParsePolicy converts a configuration value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Tiered, Flat:
		return Policy(s), nil
	case "":
		return DefaultPolicy, nil
	}
	return "", errors.Newf(errors.ErrConfigValid, "unknown build ordering %q (want %q or %q)", s, Tiered, Flat)
}

// Plan is the merged result of every module's ledger
type Plan struct {
	Phases map[Phase][]string
	Purges []string
}

// Body returns the merged snippets of phase
func (p *Plan) Body(phase Phase) []string {
	return p.Phases[phase]
}

// Emits reports whether a script file is produced for phase
func (p *Plan) Emits(phase Phase) bool {
	if len(p.Phases[phase]) > 0 {
		return true
	}
	return phase == Postrm && len(p.Purges) > 0
}

// Empty reports whether no phase produces a script
func (p *Plan) Empty() bool {
	for _, phase := range Phases {
		if p.Emits(phase) {
			return false
		}
	}
	return true
}

// Merge combines the ledgers, in the given module order, into a plan.
// Every snippet is checked for bash syntax; the first snippet that does not
// parse fails the merge with an error naming its module.
func Merge(policy Policy, ledgers []*Ledger) (*Plan, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	if policy != Tiered && policy != Flat {
		return nil, errors.Newf(errors.ErrConfigValid, "unknown build ordering %q", policy)
	}

	for _, l := range ledgers {
		if err := l.validate(); err != nil {
			return nil, err
		}
	}

	internal, external := dedupeTriggers(ledgers)

	plan := &Plan{Phases: make(map[Phase][]string, len(Phases))}
	for _, phase := range Phases {
		var body []string
		post := phase == Postinst || phase == Postrm

		if post {
			body = append(body, internal...)
		}

		switch policy {
		case Tiered:
			body = append(body, collect(ledgers, phase, Early)...)
			if post {
				body = append(body, external...)
			}
			body = append(body, collect(ledgers, phase, Late)...)
		case Flat:
			for _, l := range ledgers {
				body = append(body, l.All(phase)...)
			}
			if post {
				body = append(body, external...)
			}
		}

		plan.Phases[phase] = body
	}

	for _, l := range ledgers {
		plan.Purges = append(plan.Purges, l.purges...)
	}

	return plan, nil
}

func collect(ledgers []*Ledger, phase Phase, tier Tier) []string {
	var out []string
	for _, l := range ledgers {
		out = append(out, l.Actions(phase, tier)...)
	}
	return out
}

// dedupeTriggers removes repeated trigger texts across all ledgers. The
// first occurrence keeps its position and its internal flag.
func dedupeTriggers(ledgers []*Ledger) (internal, external []string) {
	seen := make(map[string]bool)
	for _, l := range ledgers {
		for _, t := range l.triggers {
			if seen[t.Script] {
				continue
			}
			seen[t.Script] = true
			if t.Internal {
				internal = append(internal, t.Script)
			} else {
				external = append(external, t.Script)
			}
		}
	}
	return internal, external
}

func (l *Ledger) validate() error {
	check := func(kind, script string) error {
		if err := shell.Validate(script, fmt.Sprintf("%s %s", l.module, kind)); err != nil {
			return errors.Wrapf(err, errors.ErrScriptSyntax, "module %s registered an invalid %s", l.module, kind).
				WithDetail("module", l.module)
		}
		return nil
	}

	for _, e := range l.entries {
		if err := check(string(e.Phase)+" action", e.Script); err != nil {
			return err
		}
	}
	for _, t := range l.triggers {
		if err := check("trigger", t.Script); err != nil {
			return err
		}
	}
	for _, p := range l.purges {
		if err := check("purge", p); err != nil {
			return err
		}
	}
	return nil
}
