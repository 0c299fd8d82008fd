// Package tui provides terminal output components for faster.
//
// This package provides a centralized style system using Lip Gloss for
// consistent styling. All colors use AdaptiveColor for light/dark terminal
// support.
//
// # Semantic Colors
//
//   - ColorPrimary (Blue): running tasks, prompts, intents
//   - ColorSuccess (Green): completed tasks
//   - ColorWarning (Yellow): queued tasks, low-confidence commands
//   - ColorError (Red): failed tasks
//   - ColorMuted (Gray): cancelled tasks, secondary text
//
// # Status Icons
//
// Every status is shown as icon + color + text, so output stays readable
// with NO_COLOR set.
//
// # NO_COLOR Support
//
// Call CheckNoColor() before rendering styled text. Colors are also disabled
// when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/faster/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and prompts.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for completed tasks.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for queued tasks and attention states.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed tasks.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for cancelled tasks and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// TaskStatusColor returns the semantic color for a task status.
func TaskStatusColor(status constants.TaskStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.TaskStatusQueued:
		return ColorWarning
	case constants.TaskStatusRunning:
		return ColorPrimary
	case constants.TaskStatusCompleted:
		return ColorSuccess
	case constants.TaskStatusFailed:
		return ColorError
	default:
		return ColorMuted
	}
}

// TaskStatusIcon returns the icon for a task status.
func TaskStatusIcon(status constants.TaskStatus) string {
	switch status {
	case constants.TaskStatusQueued:
		return "○"
	case constants.TaskStatusRunning:
		return "●"
	case constants.TaskStatusCompleted:
		return "✓"
	case constants.TaskStatusFailed:
		return "✗"
	case constants.TaskStatusCancelled:
		return "◌"
	default:
		return "?"
	}
}

// RenderStatus returns "icon status" colored for the status.
func RenderStatus(status constants.TaskStatus) string {
	label := TaskStatusIcon(status) + " " + status.String()
	if !HasColorSupport() {
		return label
	}
	return lipgloss.NewStyle().Foreground(TaskStatusColor(status)).Render(label)
}
