package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	markdown "github.com/vlanse/go-term-markdown"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("171"))
	sectionStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")) // Cyan
	jobTitleStyle   = lipgloss.NewStyle().Bold(true)
	fieldLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	scoreStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	successStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderMarkdown renders assistant prose for the viewport.
func RenderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	rendered := markdown.Render(content, width, 0)
	return strings.TrimRight(string(rendered), "\n")
}
