package style

import (
	"testing"

	"github.com/charmbracelet/glamour/styles"
	"github.com/scramjet-deb/scramjet/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersKeepText(t *testing.T) {
	assert.Contains(t, Bold("hello"), "hello")
	assert.Contains(t, Indent("hello", 2), "    hello")
}

func TestPhaseStyle(t *testing.T) {
	for _, phase := range ledger.Phases {
		t.Run(string(phase), func(t *testing.T) {
			assert.Contains(t, PhaseStyle(phase).Render(string(phase)), string(phase))
		})
	}

	assert.Equal(t, SubtitleStyle.Render("x"), PhaseStyle(ledger.Phase("config")).Render("x"))
}

func TestMarkdownThemeUsesPalette(t *testing.T) {
	dark := MarkdownTheme(true)
	require.NotNil(t, dark.H1.BackgroundColor)
	assert.Equal(t, PrimaryColor.Dark, *dark.H1.BackgroundColor)
	assert.Equal(t, PrimaryColor.Dark, *dark.H2.Color)

	light := MarkdownTheme(false)
	assert.Equal(t, PrimaryColor.Light, *light.H1.BackgroundColor)
	assert.Equal(t, SecondaryColor.Light, *light.Code.Color)
}

func TestMarkdownThemeLeavesGlamourStylesAlone(t *testing.T) {
	before := styles.DarkStyleConfig.H1.BackgroundColor
	MarkdownTheme(true)
	assert.Equal(t, before, styles.DarkStyleConfig.H1.BackgroundColor)
}

func TestRenderMarkdownPlainOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	out := RenderMarkdown("# Units\n\nA unit is a directory.\n", 40)
	assert.Contains(t, out, "Units")
	assert.Contains(t, out, "A unit is a directory.")
}
