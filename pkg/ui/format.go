package ui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/scramjet-deb/scramjet/pkg/errors"
)

// Format is a --format value
type Format string

const (
	// FormatAuto picks terminal or text output for the destination
	FormatAuto Format = "auto"
	// FormatTerminal renders boxes, themed markdown and tables
	FormatTerminal Format = "terminal"
	// FormatText renders plain lines that are stable enough to grep
	FormatText Format = "text"
	// FormatJSON renders one JSON document per result
	FormatJSON Format = "json"
)

// Formats lists the values --format accepts
var Formats = []Format{FormatAuto, FormatTerminal, FormatText, FormatJSON}

var formatAliases = map[string]Format{
	"":      FormatAuto,
	"term":  FormatTerminal,
	"plain": FormatText,
}

func (f Format) String() string { return string(f) }

// ParseFormat resolves a --format value, case-insensitively. "term" and
// "plain" are accepted for terminal and text.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
		WithDetail("accepted", Formats)
}

// Resolve replaces FormatAuto with the format output should get. Only a
// colour-capable terminal with NO_COLOR unset gets FormatTerminal; pipes,
// buffers and plain files get FormatText. Other formats are returned as is.
func (f Format) Resolve(output io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	file, ok := output.(*os.File)
	if !ok {
		return FormatText
	}
	return DetectFormat(file)
}

// DetectFormat picks terminal or text output for a file
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(output).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
