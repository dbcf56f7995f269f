// Package style holds the lipgloss styles used by scramjet's terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
)

// Base styles
var (
	// Headers and titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	// Text styles
	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	ModuleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

var phaseStyles = map[ledger.Phase]lipgloss.Style{
	ledger.Preinst:  lipgloss.NewStyle().Foreground(PreinstColor).Bold(true),
	ledger.Postinst: lipgloss.NewStyle().Foreground(PostinstColor).Bold(true),
	ledger.Prerm:    lipgloss.NewStyle().Foreground(PrermColor).Bold(true),
	ledger.Postrm:   lipgloss.NewStyle().Foreground(PostrmColor).Bold(true),
}

// Operation indicators
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
	InfoIndicator    = InfoStyle.Render("•")
)

// PhaseStyle returns the style of a maintainer script phase
func PhaseStyle(phase ledger.Phase) lipgloss.Style {
	if s, ok := phaseStyles[phase]; ok {
		return s
	}
	return SubtitleStyle
}

// Indent pads every line of s by level steps of two spaces
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
