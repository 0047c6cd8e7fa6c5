// Package wizard holds the interactive prompts used to write a config.
package wizard

import (
	"os"

	"golang.org/x/term"
)

// UI asks the user questions. The terminal implementation runs a bubbletea
// program or huh form per question.
type UI interface {
	// Pick returns the chosen indexes, or nil when the user cancelled.
	Pick(title string, choices []Choice, multi bool) ([]int, error)
	// Prompt returns the entered text; ok is false when the user cancelled.
	Prompt(title, placeholder, hint, value string) (string, bool, error)
	// Confirm asks a yes/no question.
	Confirm(title, description string) (bool, error)
}

// Terminal returns the bubbletea-backed UI.
func Terminal() UI {
	return terminalUI{}
}

type terminalUI struct{}

func (terminalUI) Pick(title string, choices []Choice, multi bool) ([]int, error) {
	return RunPicker(title, choices, multi)
}

func (terminalUI) Prompt(title, placeholder, hint, value string) (string, bool, error) {
	return RunPrompt(title, placeholder, hint, value)
}

func (terminalUI) Confirm(title, description string) (bool, error) {
	return RunConfirm(title, description)
}

// IsTerminal returns true if stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
