// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/lepinkainen/shelfsync/internal/goodreads"
)

const (
	defaultListWidth  = 48
	defaultListHeight = 16
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected a shelf.
	ActionSelected
	// ActionSkipped indicates the user skipped the selection.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *goodreads.Shelf
}

type shelfItem struct {
	goodreads.Shelf
}

func (i shelfItem) Title() string {
	return i.Name
}

func (i shelfItem) FilterValue() string {
	return i.Name
}

func (i shelfItem) Description() string {
	return fmt.Sprintf("%d books", i.Count)
}

type itemStyles struct {
	normal     lipgloss.Style
	selected   lipgloss.Style
	nameStyle  lipgloss.Style
	countStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	normal := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := normal.Copy().
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237")).
		Bold(true)

	return itemStyles{
		normal:   normal,
		selected: selected,
		nameStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		countStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type shelfDelegate struct {
	styles itemStyles
}

func newDelegate() shelfDelegate {
	return shelfDelegate{styles: newItemStyles()}
}

func (d shelfDelegate) Height() int                         { return 1 }
func (d shelfDelegate) Spacing() int                        { return 0 }
func (d shelfDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d shelfDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	shelf, ok := item.(shelfItem)
	if !ok {
		return
	}

	line := fmt.Sprintf("%s %s",
		d.styles.nameStyle.Render(shelf.Name),
		d.styles.countStyle.Render(fmt.Sprintf("(%d books)", shelf.Count)))

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(line))
}

type model struct {
	list   list.Model
	result SelectionResult
}

func newModel(items []shelfItem) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	delegate := newDelegate()
	l := list.New(listItems, delegate, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list: l,
		result: SelectionResult{
			Action: ActionNone,
		},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(shelfItem); ok {
				shelf := selected.Shelf
				m.result = SelectionResult{
					Action:    ActionSelected,
					Selection: &shelf,
				}
				return m, tea.Quit
			}
		case "s":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		case "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 30)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render("Pick a shelf from the export")
	listView := m.list.View()
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		skipButtonStyle.Render(" Use Default "),
		lipgloss.NewStyle().Padding(0, 2).Render(""),
		stopButtonStyle.Render(" Quit "),
	)
	help := helpStyle.Render("Up/Down navigate | Enter select | s default shelf | q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, listView, buttons, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	skipButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	stopButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectShelf presents an interactive picker over the shelves found in the
// export. Shelves without books are left out.
func SelectShelf(shelves []goodreads.Shelf) (SelectionResult, error) {
	populated := make([]goodreads.Shelf, 0, len(shelves))
	for _, shelf := range shelves {
		if shelf.Count > 0 {
			populated = append(populated, shelf)
		}
	}

	// Nothing to pick from, fall back to the default shelf
	if len(populated) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	items := make([]shelfItem, len(populated))
	for i, shelf := range populated {
		items[i] = shelfItem{Shelf: shelf}
	}
	m := newModel(items)
	finalModel, err := runProgram(m)
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

// InteractiveTerminal reports whether stdin is attached to a terminal, which
// is the precondition for showing the picker at all.
func InteractiveTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
