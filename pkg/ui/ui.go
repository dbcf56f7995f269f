// Package ui renders command output as rich terminal text, plain text or
// JSON.
package ui

import (
	"io"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ui/display"
	"github.com/scramjet-deb/scramjet/pkg/ui/json"
	"github.com/scramjet-deb/scramjet/pkg/ui/terminal"
	"github.com/scramjet-deb/scramjet/pkg/ui/text"
)

// Renderer is the common interface of every output format
type Renderer interface {
	// RenderResult prints the outcome of a build or plan
	RenderResult(result *display.DisplayResult) error

	// RenderPlan prints the control file and maintainer script snippets
	RenderPlan(result *display.DisplayResult) error

	// RenderModules prints the module listing
	RenderModules(modules []display.DisplayModule) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format, resolving FormatAuto against
// output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format.Resolve(output) {
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", format)
	}
}
