package console

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the board view.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Open  key.Binding // Show the selected entry in the detail pane.
	Close key.Binding // Close the detail pane.

	Search         key.Binding
	CycleStatus    key.Binding
	CycleCategory  key.Binding
	ClearFilters   key.Binding
	MarkNew        key.Binding
	MarkInProgress key.Binding
	MarkResolved   key.Binding
	Delete         key.Binding

	NewFeedback key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap uses vim-style navigation alongside the arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status filter"),
	),
	CycleCategory: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "category filter"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	MarkNew: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "mark new"),
	),
	MarkInProgress: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "mark in progress"),
	),
	MarkResolved: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "mark resolved"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	NewFeedback: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new feedback"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Search, k.NewFeedback, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Close},
		{k.Search, k.CycleStatus, k.CycleCategory, k.ClearFilters},
		{k.MarkNew, k.MarkInProgress, k.MarkResolved, k.Delete},
		{k.NewFeedback, k.Help, k.Quit},
	}
}

// FormKeyMap defines the key bindings of the submission form.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding // Previous category or lower rating.
	Right  key.Binding // Next category or higher rating.
	Submit key.Binding
	Cancel key.Binding
}

var DefaultFormKeyMap = FormKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "previous field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "less"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "more"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Left, k.Right, k.Submit, k.Cancel}
}

func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
