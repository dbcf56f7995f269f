// Package display turns build results into the view the renderers share.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/scramjet-deb/scramjet/pkg/modules/catalog"
	"github.com/scramjet-deb/scramjet/pkg/pipeline"
)

// DisplayResult is what build and plan print for one unit
type DisplayResult struct {
	Command   string         `json:"command"` // "build" or "plan"
	Unit      string         `json:"unit"`
	BuildID   string         `json:"buildId"`
	Version   int            `json:"version"`
	Artifact  string         `json:"artifact,omitempty"`
	Control   string         `json:"control"`
	Modules   []string       `json:"modules"`
	Files     []string       `json:"files"`
	Phases    []DisplayPhase `json:"phases"`
	Purges    []string       `json:"purges,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// DisplayPhase is one emitted maintainer script
type DisplayPhase struct {
	Phase    ledger.Phase `json:"phase"`
	Snippets []string     `json:"snippets"`
	Script   string       `json:"script"`
}

// DisplayModule is one row of the module listing
type DisplayModule struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FromResult builds the view of a pipeline result
func FromResult(command string, r *pipeline.Result) *DisplayResult {
	d := &DisplayResult{
		Command:   command,
		Unit:      r.Unit,
		BuildID:   r.BuildID,
		Version:   r.Version,
		Artifact:  r.Artifact,
		Control:   r.Control,
		Modules:   r.Modules,
		Files:     r.Files,
		Timestamp: time.Now(),
	}
	if r.Plan != nil {
		d.Purges = r.Plan.Purges
	}
	for _, s := range r.Scripts {
		p := DisplayPhase{Phase: s.Phase, Script: s.Content}
		if r.Plan != nil {
			p.Snippets = r.Plan.Body(s.Phase)
		}
		d.Phases = append(d.Phases, p)
	}
	return d
}

// FromCatalog lists the bundled modules
func FromCatalog(entries []catalog.Entry) []DisplayModule {
	out := make([]DisplayModule, len(entries))
	for i, e := range entries {
		out[i] = DisplayModule{Name: e.Name, Description: e.Description}
	}
	return out
}

// Summary is the one-line outcome of a result
func (d *DisplayResult) Summary() string {
	if d.Artifact != "" {
		return fmt.Sprintf("%s version %d built as %s", d.Unit, d.Version, d.Artifact)
	}
	return fmt.Sprintf("%s version %d planned, nothing archived", d.Unit, d.Version)
}

// Markdown renders the control file and every script snippet as a
// markdown document
func (d *DisplayResult) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s %d\n\n", d.Unit, d.Version)

	sb.WriteString("## control\n\n```\n")
	sb.WriteString(strings.TrimRight(d.Control, "\n"))
	sb.WriteString("\n```\n")

	if len(d.Phases) == 0 {
		sb.WriteString("\nNo maintainer scripts.\n")
		return sb.String()
	}

	for _, p := range d.Phases {
		fmt.Fprintf(&sb, "\n## %s\n", p.Phase)
		if p.Phase == ledger.Postrm && len(d.Purges) > 0 {
			sb.WriteString("\n### purge\n")
			writeSnippets(&sb, d.Purges)
		}
		writeSnippets(&sb, p.Snippets)
	}
	return sb.String()
}

func writeSnippets(sb *strings.Builder, snippets []string) {
	for _, s := range snippets {
		sb.WriteString("\n```bash\n")
		sb.WriteString(s)
		sb.WriteString("\n```\n")
	}
}
