package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/keyward/keyward/internal/gate"
)

// Color palette for watch output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers
	SuccessColor = lipgloss.Color("#43BF6D") // Green - granted
	ErrorColor   = lipgloss.Color("#FF5555") // Red - denied
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 40 // Minimum supported terminal width
	MaxContentWidth  = 100
)

// Shared styles for the feed view
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	GrantStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	DenyStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	TokenStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// Decision markers
const (
	GrantMarker = "✓"
	DenyMarker  = "✗"
)

// GetTerminalSize returns the current terminal size, with fallbacks
// for non-terminal output
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// FormatDecision renders one decision as a plain log line:
//
//	15:04:05  ✓ granted  33-00000392c6ea
func FormatDecision(d gate.Decision) string {
	marker, verdict := DenyMarker, "denied "
	if d.Granted {
		marker, verdict = GrantMarker, "granted"
	}
	return fmt.Sprintf("%s  %s %s  %s", d.At.Format("15:04:05"), marker, verdict, d.Token)
}

// formatDecisionStyled is FormatDecision with color for the feed view.
func formatDecisionStyled(d gate.Decision) string {
	ts := TimestampStyle.Render(d.At.Format("15:04:05"))
	if d.Granted {
		return fmt.Sprintf("%s  %s  %s", ts,
			GrantStyle.Render(GrantMarker+" granted"),
			TokenStyle.Render(d.Token))
	}
	return fmt.Sprintf("%s  %s  %s", ts,
		DenyStyle.Render(DenyMarker+" denied "),
		TokenStyle.Render(d.Token))
}
