package dashboard

import "github.com/charmbracelet/lipgloss"

// ANSI palette so the dashboard inherits the user's terminal theme.
const (
	colorHealthy   = lipgloss.Color("2")
	colorDegraded  = lipgloss.Color("3")
	colorUnhealthy = lipgloss.Color("1")
	colorUnknown   = lipgloss.Color("8")
	colorAccent    = lipgloss.Color("6")
	colorMuted     = lipgloss.Color("8")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			Padding(0, 1)

	healthyStyle   = lipgloss.NewStyle().Foreground(colorHealthy)
	degradedStyle  = lipgloss.NewStyle().Foreground(colorDegraded)
	unhealthyStyle = lipgloss.NewStyle().Foreground(colorUnhealthy).Bold(true)
	unknownStyle   = lipgloss.NewStyle().Foreground(colorUnknown)

	criticalStyle = lipgloss.NewStyle().Foreground(colorUnhealthy).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(colorDegraded)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)
