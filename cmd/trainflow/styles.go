package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	nodeIDStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	summaryStyle = lipgloss.NewStyle().MarginTop(1)
)

func checkMark(ok bool) string {
	if ok {
		return passStyle.Render("✓")
	}

	return failStyle.Render("✗")
}
