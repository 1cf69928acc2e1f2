package console

import (
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/charmbracelet/lipgloss"
)

// Styles is the console palette.
type Styles struct {
	Title    lipgloss.Style
	Stats    lipgloss.Style
	Filter   lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Detail   lipgloss.Style
	Label    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Status   map[types.FeedbackStatus]lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Stats:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Filter:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Row:      lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Foreground(lipgloss.Color("212")),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		Label:   lipgloss.NewStyle().Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Status: map[types.FeedbackStatus]lipgloss.Style{
			types.FeedbackStatusNew:        lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
			types.FeedbackStatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			types.FeedbackStatusResolved:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		},
	}
}

func (s Styles) status(st types.FeedbackStatus) string {
	style, ok := s.Status[st]
	if !ok {
		style = s.Muted
	}
	return style.Render(string(st))
}
