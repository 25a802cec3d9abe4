package status

import (
	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	account lipgloss.Style
	action  lipgloss.Style
	detail  lipgloss.Style
	warning lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
	kinds   map[domain.OutcomeKind]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		action:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(12),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		kinds: map[domain.OutcomeKind]lipgloss.Style{
			domain.OutcomeSuccess:          lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
			domain.OutcomeAlreadyCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
			domain.OutcomeUnauthorized:     lipgloss.NewStyle().Foreground(lipgloss.Color("209")),
			domain.OutcomeTransient:        lipgloss.NewStyle().Foreground(lipgloss.Color("209")),
			domain.OutcomeFatal:            lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
	}
}

func (s styles) kind(kind domain.OutcomeKind) lipgloss.Style {
	if style, ok := s.kinds[kind]; ok {
		return style
	}
	return s.detail
}
