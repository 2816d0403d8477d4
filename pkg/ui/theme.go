package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors and base styles of the selection view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme builds the default palette on r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#6C5CE7"},
		Secondary: lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C177"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6E6A86"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#9CCFD8"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F1D2E", Dark: "#E0DEF4"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E4E0FA", Dark: "#393552"}).
		Bold(true)
	return t
}
