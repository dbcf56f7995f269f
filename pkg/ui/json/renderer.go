// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/scramjet-deb/scramjet/pkg/errors"
	"github.com/scramjet-deb/scramjet/pkg/ui/display"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}
}

// RenderResult encodes the result
func (r *Renderer) RenderResult(result *display.DisplayResult) error {
	return r.encoder.Encode(result)
}

// RenderPlan encodes the result; the plan is part of it
func (r *Renderer) RenderPlan(result *display.DisplayResult) error {
	return r.encoder.Encode(result)
}

// RenderModules encodes the module listing
func (r *Renderer) RenderModules(modules []display.DisplayModule) error {
	return r.encoder.Encode(modules)
}

// RenderError renders an error with its code and details
func (r *Renderer) RenderError(err error) error {
	errorObj := map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		errorObj["details"] = details
	}
	return r.encoder.Encode(errorObj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
