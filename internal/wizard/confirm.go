package wizard

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// RunConfirm asks a yes/no question. Aborting with ctrl+c counts as no.
func RunConfirm(title, description string) (bool, error) {
	ok := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Write").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
