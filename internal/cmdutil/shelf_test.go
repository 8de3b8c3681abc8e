package cmdutil

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shelfsyncerrors "github.com/lepinkainen/shelfsync/internal/errors"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/testutil"
	"github.com/lepinkainen/shelfsync/internal/tui"
)

func stubTerminal(t *testing.T, interactive bool) {
	t.Helper()
	orig := interactiveTerminal
	interactiveTerminal = func() bool { return interactive }
	t.Cleanup(func() { interactiveTerminal = orig })
}

func stubSelectShelf(t *testing.T, result tui.SelectionResult, err error) *[][]goodreads.Shelf {
	t.Helper()
	var calls [][]goodreads.Shelf
	orig := selectShelf
	selectShelf = func(shelves []goodreads.Shelf) (tui.SelectionResult, error) {
		calls = append(calls, shelves)
		return result, err
	}
	t.Cleanup(func() { selectShelf = orig })
	return &calls
}

func TestResolveShelfPrefersFlag(t *testing.T) {
	testutil.ResetConfig(t)
	viper.Set("goodreads.shelf", "from-config")
	stubTerminal(t, false)

	shelf, err := ResolveShelf("physical-scifi", "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "physical-scifi", shelf)
}

func TestResolveShelfFallsBackToConfig(t *testing.T) {
	testutil.ResetConfig(t)
	viper.Set("goodreads.shelf", "from-config")
	stubTerminal(t, false)

	shelf, err := ResolveShelf("", "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "from-config", shelf)
}

func TestResolveShelfDefaultsWhenNotInteractive(t *testing.T) {
	testutil.ResetConfig(t)
	stubTerminal(t, false)

	shelf, err := ResolveShelf("", "export.csv")
	require.NoError(t, err)
	assert.Equal(t, DefaultShelf, shelf)
}

func TestResolveShelfInteractiveSelection(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	path := env.WriteGoodreadsExport("export.csv",
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "physical-scifi", "to-read"),
		testutil.GoodreadsExportRow("2", "Middlemarch", "George Eliot", "880", "", "read"),
	)
	stubTerminal(t, true)
	calls := stubSelectShelf(t, tui.SelectionResult{
		Action:    tui.ActionSelected,
		Selection: &goodreads.Shelf{Name: "physical-scifi", Count: 1},
	}, nil)

	shelf, err := ResolveShelf("", path)
	require.NoError(t, err)
	assert.Equal(t, "physical-scifi", shelf)

	// The picker sees the shelves parsed from the export.
	require.Len(t, *calls, 1)
	assert.NotEmpty(t, (*calls)[0])
}

func TestResolveShelfInteractiveSkipUsesDefault(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	path := env.WriteGoodreadsExport("export.csv",
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "", "to-read"),
	)
	stubTerminal(t, true)
	stubSelectShelf(t, tui.SelectionResult{Action: tui.ActionSkipped}, nil)

	shelf, err := ResolveShelf("", path)
	require.NoError(t, err)
	assert.Equal(t, DefaultShelf, shelf)
}

func TestResolveShelfInteractiveQuitAborts(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	path := env.WriteGoodreadsExport("export.csv",
		testutil.GoodreadsExportRow("1", "Piranesi", "Susanna Clarke", "245", "", "to-read"),
	)
	stubTerminal(t, true)
	stubSelectShelf(t, tui.SelectionResult{Action: tui.ActionStopped}, nil)

	_, err := ResolveShelf("", path)
	require.Error(t, err)
	assert.True(t, shelfsyncerrors.IsStopProcessingError(err), "quitting the picker should surface a stop signal")
}

func TestResolveShelfMissingExportInteractive(t *testing.T) {
	testutil.ResetConfig(t)
	stubTerminal(t, true)

	_, err := ResolveShelf("", "does-not-exist.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list shelves")
}
