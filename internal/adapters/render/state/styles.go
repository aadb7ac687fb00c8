package state

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	identity  lipgloss.Style
	connected lipgloss.Style
	absent    lipgloss.Style
	detail    lipgloss.Style
	active    lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	roleMeta  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		identity:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		connected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		absent:    lipgloss.NewStyle().Faint(true),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		active:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		roleMeta:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
