package cli

import "github.com/charmbracelet/lipgloss"

// Text output styles. lipgloss drops colors when the output is not a
// terminal.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB020"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#69A8FF"))
)

// Status marks.
const (
	markOK      = "✓"
	markFail    = "✗"
	markArrow   = "→"
	markActive  = "*"
	markSkipped = "-"
)
