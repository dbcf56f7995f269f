// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/scramjet-deb/scramjet/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderResult prints the summary line and the staged files
func (r *Renderer) RenderResult(result *display.DisplayResult) error {
	if _, err := fmt.Fprintln(r.output, result.Summary()); err != nil {
		return err
	}
	for _, p := range result.Phases {
		if _, err := fmt.Fprintf(r.output, "  %s: %d snippet(s)\n", p.Phase, len(p.Snippets)); err != nil {
			return err
		}
	}
	for _, f := range result.Files {
		if _, err := fmt.Fprintf(r.output, "  %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

// RenderPlan prints the plan as unrendered markdown
func (r *Renderer) RenderPlan(result *display.DisplayResult) error {
	_, err := fmt.Fprint(r.output, result.Markdown())
	return err
}

// RenderModules prints one module per line
func (r *Renderer) RenderModules(modules []display.DisplayModule) error {
	width := 0
	for _, m := range modules {
		width = max(width, len(m.Name))
	}
	for _, m := range modules {
		if _, err := fmt.Fprintf(r.output, "%-*s  %s\n", width, m.Name, m.Description); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, writeErr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return writeErr
}

// RenderMessage renders a simple message as plain text
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
