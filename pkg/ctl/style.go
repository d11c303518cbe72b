package ctl

import (
	"github.com/charmbracelet/lipgloss"

	"nodedash/pkg/models"
)

var (
	green  = lipgloss.Color("#22C55E")
	red    = lipgloss.Color("#EF4444")
	yellow = lipgloss.Color("#F59E0B")
	dim    = lipgloss.Color("#9AA4C7")
	accent = lipgloss.Color("#06B6D4")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyStyle   = lipgloss.NewStyle().Foreground(dim).Width(12)
	valueStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)

	okStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(yellow).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(red).Bold(true)
)

func statusStyle(s models.NodeStatus) lipgloss.Style {
	switch s {
	case models.StatusHealthy, models.StatusConnected:
		return okStyle
	case models.StatusSyncing:
		return warnStyle
	case models.StatusError:
		return errStyle
	default:
		return dimStyle
	}
}
