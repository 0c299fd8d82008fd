package tui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	fastererrors "github.com/mrz1836/faster/internal/errors"
)

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}

// Theme returns a Huh theme built from the package colors.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// Confirm asks a yes/no question. It returns errors.ErrInteractiveRequired
// when stdin is not a terminal and errors.ErrOperationCanceled when the user
// aborts with Esc or Ctrl+C.
func Confirm(title, description string, defaultYes bool) (bool, error) {
	return ConfirmWithTimeout(title, description, defaultYes, 0)
}

// ConfirmWithTimeout is Confirm with an answer window. When timeout elapses
// without an answer the default is returned. Zero waits forever.
func ConfirmWithTimeout(title, description string, defaultYes bool, timeout time.Duration) (bool, error) {
	if !IsInteractive() {
		return false, fastererrors.ErrInteractiveRequired
	}

	confirmed := defaultYes
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithShowHelp(false)
	if timeout > 0 {
		form = form.WithTimeout(timeout)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrTimeout) {
			return defaultYes, nil
		}
		if errors.Is(err, huh.ErrUserAborted) {
			return false, fastererrors.ErrOperationCanceled
		}
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}
