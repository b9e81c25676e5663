package status

import (
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	account lipgloss.Style
	detail  lipgloss.Style
	warning lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style

	energyKey  lipgloss.Style
	energyMeta lipgloss.Style
	barEdge    lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style

	badges map[domain.ControllerState]lipgloss.Style
	badge  lipgloss.Style
}

func newStyles() styles {
	warning := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	busy := lipgloss.NewStyle().Foreground(lipgloss.Color("117"))

	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning: warning,
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),

		energyKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		energyMeta: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barEdge:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),

		badges: map[domain.ControllerState]lipgloss.Style{
			"":                    lipgloss.NewStyle().Faint(true),
			domain.StateSynced:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
			domain.StateTapping:   busy,
			domain.StateUpgrading: busy,
			domain.StateThrottled: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
			domain.StateNeedsAuth: warning,
			domain.StateBackoff:   warning,
		},
		badge: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// stateBadge renders the controller state as a bracketed tag, "[idle]" before the first step.
func (s styles) stateBadge(state domain.ControllerState) string {
	style, ok := s.badges[state]
	if !ok {
		style = s.badge
	}

	label := "idle"
	if state != "" {
		label = state.Label()
	}

	return style.Render("[" + label + "]")
}
