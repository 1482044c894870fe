package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board
type KeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding

	Tap        key.Binding
	RefreshAll key.Binding
	Add        key.Binding
	AddWithID  key.Binding
	Delete     key.Binding
	Carrier    key.Binding
	Tile       key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left", "k", "up"),
			key.WithHelp("h/←", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right", "j", "down"),
			key.WithHelp("l/→", "next"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Tap: key.NewBinding(
			key.WithKeys("enter", " ", "r"),
			key.WithHelp("enter", "update"),
		),
		RefreshAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "update all"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add widget"),
		),
		AddWithID: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add widget by id"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove widget"),
		),
		Carrier: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "choose carrier"),
		),
		Tile: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "update tile"),
		),
	}
}

// Keys is the global key map instance
var Keys = DefaultKeyMap()
