package deliver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/openmesh/xmon/internal/alert"
)

// ANSI palette, matching the rest of the terminal surfaces.
const (
	colorInfo     lipgloss.Color = "6" // Cyan
	colorWarning  lipgloss.Color = "3" // Yellow
	colorCritical lipgloss.Color = "1" // Red
	colorMuted    lipgloss.Color = "8" // Gray (bright black)
)

var (
	infoStyle     = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

func severityStyle(sev alert.Severity) lipgloss.Style {
	switch sev {
	case alert.SeverityCritical:
		return criticalStyle
	case alert.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

// styledOutput reports whether the writer should receive ANSI styling:
// a real terminal, and NO_COLOR not set.
func styledOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return !termenv.EnvNoColor()
}

// sendConsole prints a one-line notice, styled when stdout is a terminal.
func (d *Dispatcher) sendConsole(a alert.Alert) error {
	tag := "[" + strings.ToUpper(string(a.Severity)) + "]"
	meta := fmt.Sprintf("(%s, %s)", a.NodeID, a.Timestamp.Format("15:04:05"))

	if styledOutput(d.out) {
		tag = severityStyle(a.Severity).Render(tag)
		meta = mutedStyle.Render(meta)
	}

	_, err := fmt.Fprintf(d.out, "%s %s %s\n", tag, a.Message, meta)
	return err
}
