package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#075E54", Dark: "#25D366"}
	muted  = lipgloss.AdaptiveColor{Light: "245", Dark: "242"}
	frame  = lipgloss.AdaptiveColor{Light: "250", Dark: "237"}
	warm   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	senderStyle   = lipgloss.NewStyle().Foreground(warm)
	detailStyle   = lipgloss.NewStyle().Foreground(muted)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(accent)
	headerStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	emptyStyle    = lipgloss.NewStyle().Foreground(muted).Italic(true)
	footerPadding = lipgloss.NewStyle().Padding(0, 1)
)

// box is the panel frame, drawn in the accent colour while it has focus.
func box(focused bool) lipgloss.Style {
	c := lipgloss.TerminalColor(frame)
	if focused {
		c = accent
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
}
