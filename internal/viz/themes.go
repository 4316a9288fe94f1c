package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the pot drawing and the stats panel.
type Theme struct {
	Name    string
	Liquid  lipgloss.Color
	Steam   lipgloss.Color
	Flame   lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeKitchen = Theme{
		Name:    "kitchen",
		Liquid:  lipgloss.Color("#3fa7ff"),
		Steam:   lipgloss.Color("#d0d8e0"),
		Flame:   lipgloss.Color("#ff7a1a"),
		Text:    lipgloss.Color("#f0f0f0"),
		Muted:   lipgloss.Color("#777788"),
		Accent:  lipgloss.Color("#00ccff"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeLab = Theme{
		Name:    "lab",
		Liquid:  lipgloss.Color("#00ff88"),
		Steam:   lipgloss.Color("#88ffcc"),
		Flame:   lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Accent:  lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Liquid:  lipgloss.Color("#ffffff"),
		Steam:   lipgloss.Color("#aaaaaa"),
		Flame:   lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Accent:  lipgloss.Color("#0088ff"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeKitchen, ThemeLab, ThemeMinimal}
)

// GetTheme returns the named theme, or the kitchen theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeKitchen
}

// next returns the theme after t in Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
