package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/boilsim/internal/config"
)

// picker is a menu of presets.
type picker struct {
	names    []string
	presets  map[string]*config.Workshop
	cursor   int
	selected string
	styles   styles
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		p.selected = p.names[p.cursor]
		return p, tea.Quit
	}
	return p, nil
}

func (p picker) View() string {
	var b strings.Builder
	b.WriteString(p.styles.title.Render("BOILSIM") + "\n")
	b.WriteString(p.styles.muted.Render("choose a workshop") + "\n\n")
	for i, name := range p.names {
		w := p.presets[name]
		line := fmt.Sprintf("%-20s %6.0f m  %s", name, w.Altitude, w.Fluid)
		if i == p.cursor {
			b.WriteString(p.styles.accent.Render("> "+line) + "\n")
			b.WriteString("  " + p.styles.muted.Render(w.Description) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString(helpStyle.Render("↑↓:Move Enter:Start Q:Quit"))
	return b.String()
}

// Pick shows the preset menu and returns the chosen name, or "" when the
// user quit.
func Pick(theme Theme) (string, error) {
	p := picker{
		names:   config.ListPresets(),
		presets: config.Presets(),
		styles:  newStyles(theme),
	}
	final, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(picker).selected, nil
}
