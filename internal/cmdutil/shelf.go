package cmdutil

import (
	"fmt"

	"github.com/spf13/viper"

	shelfsyncerrors "github.com/lepinkainen/shelfsync/internal/errors"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/tui"
)

// DefaultShelf is the shelf commands operate on when nothing else picks one.
const DefaultShelf = "to-read"

var (
	selectShelf         = tui.SelectShelf
	interactiveTerminal = tui.InteractiveTerminal
)

// ResolveShelf picks the shelf a command should operate on: the flag value,
// then config, then the interactive picker on a terminal, then the default.
func ResolveShelf(flagValue, csvPath string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if shelf := viper.GetString("goodreads.shelf"); shelf != "" {
		return shelf, nil
	}

	if interactiveTerminal() {
		shelves, err := goodreads.Shelves(csvPath)
		if err != nil {
			return "", fmt.Errorf("failed to list shelves: %w", err)
		}

		result, err := selectShelf(shelves)
		if err != nil {
			return "", err
		}
		switch result.Action {
		case tui.ActionSelected:
			return result.Selection.Name, nil
		case tui.ActionStopped:
			return "", shelfsyncerrors.NewStopProcessingError("shelf selection stopped by user")
		}
	}

	return DefaultShelf, nil
}
