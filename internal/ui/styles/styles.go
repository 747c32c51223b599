// Package styles provides shared lipgloss styles for fspec output.
package styles

import "charm.land/lipgloss/v2"

// Palette
var (
	Success = lipgloss.Color("82")  // green
	Error   = lipgloss.Color("196") // red
	Muted   = lipgloss.Color("240") // dark gray
	Warning = lipgloss.Color("214") // orange
)

var (
	Bold         = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
)

// Status renders a lifecycle status: done in green, blocked in orange,
// everything else plain.
func Status(status string) string {
	switch status {
	case "done":
		return SuccessStyle.Render(status)
	case "blocked":
		return WarningStyle.Render(status)
	}
	return status
}

// Blocking renders the blocking flag of a hook.
func Blocking(blocking bool) string {
	if blocking {
		return ErrorStyle.Render("blocking")
	}
	return MutedStyle.Render("-")
}
