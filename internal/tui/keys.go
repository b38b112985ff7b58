package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	tab     key.Binding
	backtab key.Binding
	quit    key.Binding

	// chat screen, sidebar focus
	newChat key.Binding
	delete  key.Binding
	copy    key.Binding
	like    key.Binding
	dislike key.Binding
	refresh key.Binding
	logout  key.Binding
	yes     key.Binding
	no      key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	tab:     key.NewBinding(key.WithKeys("tab")),
	backtab: key.NewBinding(key.WithKeys("shift+tab")),
	quit:    key.NewBinding(key.WithKeys("ctrl+c")),

	newChat: key.NewBinding(key.WithKeys("n")),
	delete:  key.NewBinding(key.WithKeys("d")),
	copy:    key.NewBinding(key.WithKeys("y")),
	like:    key.NewBinding(key.WithKeys("+")),
	dislike: key.NewBinding(key.WithKeys("-")),
	refresh: key.NewBinding(key.WithKeys("r")),
	logout:  key.NewBinding(key.WithKeys("l")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n")),
}
