package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/autododge/internal/core"
	"github.com/vovakirdan/autododge/internal/platform/tui"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the theme palettes of the settings profile",
	Long: `Display every theme the generator can pick for the selected profile,
with color swatches for background, grid and accent.

Examples:
  autododge themes
  autododge themes --profile v1`,
	Args: cobra.NoArgs,
	Run:  runThemes,
}

func runThemes(_ *cobra.Command, _ []string) {
	theme := tui.DefaultTheme()

	fmt.Println(theme.Title.Render(fmt.Sprintf("Themes - profile %s", settings.Version)))
	fmt.Println()

	for _, th := range settings.Generator.Themes {
		fmt.Printf("  %-10s %s %s %s\n",
			th.Name, swatch(th.Background), swatch(th.Grid), swatch(th.Accent))
	}
}

// swatch renders a color sample followed by its hex value.
func swatch(c core.RGB) string {
	block := lipgloss.NewStyle().Background(lipgloss.Color(c.String())).Render("    ")
	return block + " " + c.String()
}
