// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/scramjet-deb/scramjet/pkg/style"
	"github.com/scramjet-deb/scramjet/pkg/ui/display"
)

// Renderer provides rich terminal output using lipgloss styles, themed
// markdown and pterm tables
type Renderer struct {
	output io.Writer
	// Width wraps rendered markdown; 0 wraps at the terminal width
	Width int
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderResult renders the build summary in a box
func (r *Renderer) RenderResult(result *display.DisplayResult) error {
	var lines []string
	lines = append(lines, style.SuccessIndicator+" "+style.SubtitleStyle.Render(result.Summary()))
	for _, p := range result.Phases {
		lines = append(lines, style.Indent(
			style.PhaseStyle(p.Phase).Render(string(p.Phase))+" "+
				style.MutedStyle.Render(fmt.Sprintf("%d snippet(s)", len(p.Snippets))), 1))
	}
	if len(result.Files) > 0 {
		lines = append(lines, style.Indent(style.MutedStyle.Render(fmt.Sprintf("%d file(s) staged", len(result.Files))), 1))
	}

	_, err := fmt.Fprintln(r.output, style.BoxStyle.Render(strings.Join(lines, "\n")))
	return err
}

// RenderPlan renders the plan markdown in scramjet's markdown theme
func (r *Renderer) RenderPlan(result *display.DisplayResult) error {
	_, err := fmt.Fprint(r.output, style.RenderMarkdown(result.Markdown(), r.Width))
	return err
}

// RenderModules renders the module listing as a table
func (r *Renderer) RenderModules(modules []display.DisplayModule) error {
	data := pterm.TableData{{"Module", "Description"}}
	for _, m := range modules {
		data = append(data, []string{style.ModuleStyle.Render(m.Name), m.Description})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.output, table)
	return err
}

// RenderError renders an error in the error style
func (r *Renderer) RenderError(err error) error {
	_, writeErr := fmt.Fprintln(r.output, style.ErrorIndicator+" "+style.ErrorStyle.Render(err.Error()))
	return writeErr
}

// RenderMessage renders an informational message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.InfoIndicator+" "+style.NormalStyle.Render(msg))
	return err
}
