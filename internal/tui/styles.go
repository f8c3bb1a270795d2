package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#FF4500")
	muted  = lipgloss.Color("#808080")

	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(accent)
	categoryStyle       = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	activeCategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1)
	itemStyle           = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle   = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(accent)
	metaStyle           = lipgloss.NewStyle().Foreground(muted)
	kindStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5F87FF"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	noticeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F"))
	helpStyle           = lipgloss.NewStyle().Foreground(muted).MarginTop(1)
)
