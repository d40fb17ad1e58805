package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	ColorSuccess = lipgloss.Color("35")  // Green
	ColorError   = lipgloss.Color("196") // Red
	ColorDim     = lipgloss.Color("241") // Gray
	ColorAccent  = lipgloss.Color("39")  // Blue
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	NameStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)
)

// styled renders with the style only when stdout is a terminal, so piped
// output stays machine-readable.
func styled(style lipgloss.Style, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return style.Render(s)
}
