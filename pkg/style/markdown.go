package style

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// MaxMarkdownWidth caps word wrapping on wide terminals
const MaxMarkdownWidth = 100

// MarkdownTheme returns glamour's base style recoloured with the scramjet
// palette
func MarkdownTheme(dark bool) ansi.StyleConfig {
	theme := styles.LightStyleConfig
	pick := func(c lipgloss.AdaptiveColor) *string {
		v := c.Light
		if dark {
			v = c.Dark
		}
		return &v
	}
	if dark {
		theme = styles.DarkStyleConfig
	}

	theme.H1.Color = pick(HeadingColor)
	theme.H1.BackgroundColor = pick(PrimaryColor)
	theme.H2.Color = pick(PrimaryColor)
	theme.H3.Color = pick(InfoColor)
	theme.Link.Color = pick(InfoColor)
	theme.Code.Color = pick(SecondaryColor)
	return theme
}

// RenderMarkdown renders content for the terminal. Output that is not a
// colour terminal gets glamour's notty style. A width of 0 wraps at the
// terminal width, capped at MaxMarkdownWidth. Content is returned as is
// when glamour fails.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = min(pterm.GetTerminalWidth(), MaxMarkdownWidth)
	}

	theme := glamour.WithStandardStyle(styles.NoTTYStyle)
	if colorTerminal() {
		theme = glamour.WithStyles(MarkdownTheme(lipgloss.HasDarkBackground()))
	}

	renderer, err := glamour.NewTermRenderer(theme, glamour.WithWordWrap(width))
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func colorTerminal() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
